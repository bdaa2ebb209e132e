package service

import (
	"context"
	"fmt"

	"github.com/jacentio/constellation/store"
)

const lineUserIDAttr = "lineUserId"

// findByLineID applies the at-most-one rule of LINE accounts to a user partition.
func findByLineID[T store.Keyed](ctx context.Context, s *store.Store, partition store.Entity, lineUserID string) (*T, error) {
	if lineUserID == "" {
		return nil, invalid(lineUserIDAttr, "required")
	}
	user, err := store.FindUnique[T](ctx, s, partition, store.Filter{Attribute: lineUserIDAttr, Value: lineUserID})
	if store.IsCardinalityError(err) {
		return nil, fmt.Errorf("get multiple users with same lineUserId: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by lineUserId: %w", err)
	}
	return user, nil
}

func getByID[T store.Keyed](ctx context.Context, s *store.Store, partition store.Entity, id string) (*T, error) {
	key, err := store.MakeKey(partition, id)
	if err != nil {
		return nil, invalid("id", "required")
	}
	return store.GetItem[T](ctx, s, key)
}
