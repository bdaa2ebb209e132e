package app

import (
	"context"
	"testing"

	"github.com/jacentio/constellation/model/altarf"
	"github.com/jacentio/constellation/store"
	"github.com/jacentio/constellation/store/storetest"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if len(r.Partitions()) != 6 {
		t.Errorf("expected 6 partitions, got %v", r.Partitions())
	}
	if _, err := store.Describe[altarf.Quiz](r); err != nil {
		t.Errorf("expected altarf quiz registered, got %v", err)
	}
}

func TestNewServices(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	s := store.NewWithRegistry(storetest.NewClient(), store.DefaultConfig(), r)
	svc := NewServices(s, nil)

	if svc.Users == nil || svc.AltarfUsers == nil || svc.Pairs == nil || svc.Quizzes == nil {
		t.Fatalf("expected every service wired, got %+v", svc)
	}

	user, err := svc.AltarfUsers.Register(context.Background(), "line-1", "Ms. Lin", altarf.RoleTeacher)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.CreationID == "" {
		t.Error("expected generated creationId")
	}
}
