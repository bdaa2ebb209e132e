package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/store"
)

// AltarfUserService manages altarf teachers and students.
type AltarfUserService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewAltarfUserService(s *store.Store, logger *slog.Logger) *AltarfUserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AltarfUserService{store: s, logger: logger}
}

func (a *AltarfUserService) GetUserByID(ctx context.Context, id string) (*altarf.User, error) {
	return getByID[altarf.User](ctx, a.store, altarf.EntityUser, id)
}

func (a *AltarfUserService) GetUserByLineID(ctx context.Context, lineUserID string) (*altarf.User, error) {
	return findByLineID[altarf.User](ctx, a.store, altarf.EntityUser, lineUserID)
}

// Register links a LINE account to a new altarf user. Registering an account
// that already has a user returns the existing one.
func (a *AltarfUserService) Register(ctx context.Context, lineUserID, name string, role altarf.Role) (*altarf.User, error) {
	existing, err := a.GetUserByLineID(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if name == "" {
		return nil, invalid("name", "required")
	}
	if role != altarf.RoleTeacher && role != altarf.RoleStudent {
		return nil, invalid("role", "unknown role %q", role)
	}

	user := altarf.User{
		DbKey:      store.NewKey(altarf.EntityUser),
		LineUserID: lineUserID,
		Name:       name,
		Role:       role,
	}
	if err := store.PutItem(ctx, a.store, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	a.logger.Info("altarf user registered", "key", user.Key().String(), "role", role)
	return &user, nil
}

// teacherByLineID resolves the calling teacher.
func (a *AltarfUserService) teacherByLineID(ctx context.Context, lineUserID string) (*altarf.User, error) {
	teacher, err := a.GetUserByLineID(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	if teacher == nil {
		return nil, fmt.Errorf("teacher with lineUserId %s: %w", lineUserID, store.ErrNotFound)
	}
	if teacher.Role != altarf.RoleTeacher {
		return nil, invalid("lineUserId", "user %s is not a teacher", teacher.CreationID)
	}
	return teacher, nil
}
