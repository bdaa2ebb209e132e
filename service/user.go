// Package service implements the application services of the sadalsuud and
// altarf projects on top of the store.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jacentio/constellation/model/sadalsuud"
	"github.com/jacentio/constellation/store"
)

// UserService manages sadalsuud volunteers.
type UserService struct {
	store     *store.Store
	validator Validator
	logger    *slog.Logger
}

// NewUserService creates a UserService. A nil validator means DefaultValidator.
func NewUserService(s *store.Store, v Validator, logger *slog.Logger) *UserService {
	if v == nil {
		v = DefaultValidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{store: s, validator: v, logger: logger}
}

// GetUserByID returns the user with the given creationId, or nil.
func (u *UserService) GetUserByID(ctx context.Context, id string) (*sadalsuud.User, error) {
	return getByID[sadalsuud.User](ctx, u.store, sadalsuud.EntityUser, id)
}

// GetUserByLineID returns the user linked to a LINE account, or nil. A LINE
// account linked to several users is reported as a cardinality error.
func (u *UserService) GetUserByLineID(ctx context.Context, lineUserID string) (*sadalsuud.User, error) {
	return findByLineID[sadalsuud.User](ctx, u.store, sadalsuud.EntityUser, lineUserID)
}

// GetAllUsers returns every sadalsuud user.
func (u *UserService) GetAllUsers(ctx context.Context) ([]sadalsuud.User, error) {
	return store.QueryAll[sadalsuud.User](ctx, u.store, sadalsuud.EntityUser)
}

// AddUser validates user, assigns it a new key and stores it.
func (u *UserService) AddUser(ctx context.Context, user sadalsuud.User) (*sadalsuud.User, error) {
	if err := u.validator.ValidateUser(user); err != nil {
		return nil, err
	}

	user.DbKey = store.NewKey(sadalsuud.EntityUser)
	if err := store.PutItem(ctx, u.store, user); err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}

	u.logger.Info("user added", "key", user.Key().String(), "role", user.Role)
	return &user, nil
}
