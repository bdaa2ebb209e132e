// Package app assembles the registry, store and services shared by the
// binaries.
package app

import (
	"errors"
	"log/slog"

	"github.com/jacentio/constellation/api"
	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/model/sadalsuud"
	"github.com/jacentio/constellation/service"
	"github.com/jacentio/constellation/store"
)

// NewRegistry registers every project's entity kinds and validates the result.
func NewRegistry() (*store.Registry, error) {
	r := store.NewRegistry()
	if err := errors.Join(sadalsuud.Register(r), altarf.Register(r)); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewServices wires the domain services over s.
func NewServices(s *store.Store, logger *slog.Logger) api.Services {
	v := service.DefaultValidator{}
	users := service.NewAltarfUserService(s, logger)
	return api.Services{
		Users:       service.NewUserService(s, v, logger),
		AltarfUsers: users,
		Pairs:       service.NewPairService(s, v, logger),
		Quizzes:     service.NewQuizService(s, users, v, logger),
	}
}
