package store

import (
	"github.com/jacentio/constellation/internal/idgen"
)

// Attribute names of the DbKey fields as stored.
const (
	AttrProjectEntity = "projectEntity"
	AttrCreationID    = "creationId"
)

// Entity names one kind of stored record within a project namespace
// (e.g. "sadalsuud-user"). Each value is a partition of the table.
type Entity string

// DbKey is the composite identifier every stored entity carries.
// Two keys are equal iff both fields are equal.
type DbKey struct {
	ProjectEntity Entity `dynamodbav:"projectEntity" json:"projectEntity"`
	CreationID    string `dynamodbav:"creationId" json:"creationId"`
}

// Keyed is implemented by every storable entity shape.
// Shapes get it for free by embedding DbKey.
type Keyed interface {
	Key() DbKey
}

// Key returns the key itself, so any struct embedding DbKey implements Keyed.
func (k DbKey) Key() DbKey {
	return k
}

// String returns the key as "partition#creationId".
func (k DbKey) String() string {
	return string(k.ProjectEntity) + "#" + k.CreationID
}

// MakeKey builds a key, failing with ErrInvalidKey when creationID is empty.
func MakeKey(projectEntity Entity, creationID string) (DbKey, error) {
	if creationID == "" {
		return DbKey{}, ErrInvalidKey
	}
	return DbKey{ProjectEntity: projectEntity, CreationID: creationID}, nil
}

// NewKey builds a key with a freshly generated creationId.
func NewKey(projectEntity Entity) DbKey {
	return DbKey{ProjectEntity: projectEntity, CreationID: idgen.New()}
}
