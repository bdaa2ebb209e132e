package store

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is matched by every *SchemaError.
	ErrSchema = errors.New("constellation: schema error")

	// ErrStore is matched by every *StoreError.
	ErrStore = errors.New("constellation: store failure")

	// ErrCardinality is matched by every *CardinalityError.
	ErrCardinality = errors.New("constellation: multiple records for unique key")

	// ErrInvalidKey is returned when a DbKey has an empty creationId.
	ErrInvalidKey = errors.New("constellation: invalid key")

	// ErrNotFound is available to services that treat absence as a business error.
	// The store itself reports absence as a nil result, never as this error.
	ErrNotFound = errors.New("constellation: entity not found")
)

// SchemaError reports registry misuse: conflicting registration or use of an
// unregistered entity kind. It is a startup-order defect and is never retried.
type SchemaError struct {
	// Kind is the entity kind (Go type name) or partition involved.
	Kind string
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Kind == "" {
		return "constellation: schema: " + e.Msg
	}
	return fmt.Sprintf("constellation: schema: %s: %s", e.Kind, e.Msg)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

func schemaErrorf(kind, format string, args ...any) error {
	return &SchemaError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure of the backing store during put, get or query.
type StoreError struct {
	// Op is the store operation: "put", "get" or "query".
	Op        string
	Partition Entity
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("constellation: %s %s: %v", e.Op, e.Partition, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// CardinalityError is returned by FindUnique when a lookup on an alternate key
// that must be unique matched more than one record. Zero matches is not an error.
type CardinalityError struct {
	Partition Entity
	Attribute string
	Value     any
	Count     int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("constellation: %d records in %s share %s=%v, expected at most one",
		e.Count, e.Partition, e.Attribute, e.Value)
}

func (e *CardinalityError) Is(target error) bool {
	return target == ErrCardinality
}

// IsSchemaError reports whether err is a registry misuse error.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsStoreError reports whether err is a backing-store failure.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsCardinalityError reports whether err is a uniqueness violation on an alternate key.
func IsCardinalityError(err error) bool {
	return errors.Is(err, ErrCardinality)
}
