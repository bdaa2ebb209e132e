package sadalsuud

import (
	"testing"

	"github.com/jacentio/constellation/store"
)

func TestRegister(t *testing.T) {
	r := store.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// Registering twice is a no-op.
	if err := Register(r); err != nil {
		t.Fatalf("second register: %v", err)
	}

	tests := []struct {
		partition store.Entity
		relations int
	}{
		{EntityUser, 1},
		{EntityTrip, 1},
		{EntitySign, 2},
	}
	for _, tt := range tests {
		schema, err := r.DescribePartition(tt.partition)
		if err != nil {
			t.Errorf("describe %s: %v", tt.partition, err)
			continue
		}
		if schema.PrimaryField != store.AttrCreationID {
			t.Errorf("%s: expected primary %q, got %q", tt.partition, store.AttrCreationID, schema.PrimaryField)
		}
		if len(schema.Relations) != tt.relations {
			t.Errorf("%s: expected %d relations, got %d", tt.partition, tt.relations, len(schema.Relations))
		}
	}
}

func TestUserLineRelation(t *testing.T) {
	r := store.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatal(err)
	}

	schema, err := store.Describe[User](r)
	if err != nil {
		t.Fatal(err)
	}
	rel, ok := schema.Relation("lineUserId")
	if !ok || rel.Cardinality != store.Many {
		t.Errorf("expected many-relation on lineUserId, got %+v", rel)
	}
}
