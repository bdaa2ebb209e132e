package store

import (
	"reflect"
	"slices"
	"sort"
	"sync"
)

// Cardinality is the arity of a declared relation.
type Cardinality int

const (
	// One marks a field holding a single foreign creationId.
	One Cardinality = iota + 1
	// Many marks a field that is queryable as a one-to-many relation.
	Many
)

func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	default:
		return "unknown"
	}
}

// MarshalText renders the cardinality as "one" or "many".
func (c Cardinality) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Relation describes a declared foreign-reference field.
type Relation struct {
	// Field is the stored attribute name (e.g. "teacherId").
	Field string `yaml:"field" json:"field"`

	Cardinality Cardinality `yaml:"cardinality" json:"cardinality"`

	// Target is the partition of the referenced entity kind.
	Target Entity `yaml:"target" json:"target"`
}

// Schema is the accumulated descriptor of one entity kind.
type Schema struct {
	// Kind is the Go type name of the entity shape (e.g. "model.User").
	Kind string `yaml:"kind" json:"kind"`

	// Partition is the table partition records of this kind live under.
	Partition Entity `yaml:"partition" json:"partition"`

	// PrimaryField is the attribute used as the direct-lookup key component.
	// Empty when no primary attribute was registered.
	PrimaryField string `yaml:"primaryField,omitempty" json:"primaryField,omitempty"`

	Relations []Relation `yaml:"relations,omitempty" json:"relations,omitempty"`
}

// Relation returns the declared relation on field, if any.
func (s Schema) Relation(field string) (Relation, bool) {
	for _, rel := range s.Relations {
		if rel.Field == field {
			return rel, true
		}
	}
	return Relation{}, false
}

type descriptor struct {
	kind      reflect.Type
	partition Entity
	primary   string
	relations []Relation
}

func (d *descriptor) schema() Schema {
	return Schema{
		Kind:         d.kind.String(),
		Partition:    d.partition,
		PrimaryField: d.primary,
		Relations:    slices.Clone(d.relations),
	}
}

// Registry holds schema descriptors keyed by entity kind.
// It is populated once at startup and read on every store operation.
type Registry struct {
	mu          sync.RWMutex
	byKind      map[reflect.Type]*descriptor
	byPartition map[Entity]reflect.Type
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind:      make(map[reflect.Type]*descriptor),
		byPartition: make(map[Entity]reflect.Type),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func kindOf[T Keyed]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// descriptorFor returns the descriptor for kind, creating an empty one.
// Field markers may be registered before the entity itself.
// Caller must hold r.mu for writing.
func (r *Registry) descriptorFor(kind reflect.Type) *descriptor {
	d, ok := r.byKind[kind]
	if !ok {
		d = &descriptor{kind: kind}
		r.byKind[kind] = d
	}
	return d
}

// RegisterEntity records the partition under which records of kind T live.
// Registering the same partition twice is a no-op.
func RegisterEntity[T Keyed](r *Registry, partition Entity) error {
	return r.registerEntity(kindOf[T](), partition)
}

func (r *Registry) registerEntity(kind reflect.Type, partition Entity) error {
	if partition == "" {
		return schemaErrorf(kind.String(), "empty partition name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.descriptorFor(kind)
	if d.partition != "" && d.partition != partition {
		return schemaErrorf(kind.String(), "already registered with partition %q, not %q", d.partition, partition)
	}
	if owner, ok := r.byPartition[partition]; ok && owner != kind {
		return schemaErrorf(kind.String(), "partition %q already owned by %s", partition, owner)
	}

	d.partition = partition
	r.byPartition[partition] = kind
	return nil
}

// RegisterPrimaryAttribute marks field as the unique key component used for
// direct get and put of kind T.
func RegisterPrimaryAttribute[T Keyed](r *Registry, field string) error {
	return r.registerPrimary(kindOf[T](), field)
}

func (r *Registry) registerPrimary(kind reflect.Type, field string) error {
	if field == "" {
		return schemaErrorf(kind.String(), "empty primary attribute name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.descriptorFor(kind)
	if d.primary != "" && d.primary != field {
		return schemaErrorf(kind.String(), "primary attribute already set to %q, not %q", d.primary, field)
	}
	d.primary = field
	return nil
}

// RegisterRelatedAttributeOne marks field as a single foreign reference to
// a record in the target partition.
func RegisterRelatedAttributeOne[T Keyed](r *Registry, field string, target Entity) error {
	return r.registerRelation(kindOf[T](), Relation{Field: field, Cardinality: One, Target: target})
}

// RegisterRelatedAttributeMany marks field as a one-to-many relation: records
// of kind T become queryable by the value of field.
func RegisterRelatedAttributeMany[T Keyed](r *Registry, field string, target Entity) error {
	return r.registerRelation(kindOf[T](), Relation{Field: field, Cardinality: Many, Target: target})
}

func (r *Registry) registerRelation(kind reflect.Type, rel Relation) error {
	if rel.Field == "" {
		return schemaErrorf(kind.String(), "empty relation attribute name")
	}
	if rel.Target == "" {
		return schemaErrorf(kind.String(), "relation %q has no target partition", rel.Field)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.descriptorFor(kind)
	for _, existing := range d.relations {
		if existing.Field != rel.Field {
			continue
		}
		if existing != rel {
			return schemaErrorf(kind.String(), "relation %q already registered as %s to %q",
				rel.Field, existing.Cardinality, existing.Target)
		}
		return nil
	}
	d.relations = append(d.relations, rel)
	return nil
}

// Describe returns the descriptor of kind T.
func Describe[T Keyed](r *Registry) (Schema, error) {
	return r.describe(kindOf[T]())
}

func (r *Registry) describe(kind reflect.Type) (Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byKind[kind]
	if !ok || d.partition == "" {
		return Schema{}, schemaErrorf(kind.String(), "unregistered entity kind")
	}
	return d.schema(), nil
}

// DescribePartition returns the descriptor of the kind that owns partition.
func (r *Registry) DescribePartition(partition Entity) (Schema, error) {
	r.mu.RLock()
	kind, ok := r.byPartition[partition]
	r.mu.RUnlock()
	if !ok {
		return Schema{}, schemaErrorf(string(partition), "unregistered entity kind")
	}
	return r.describe(kind)
}

// Partitions returns all registered partitions in sorted order.
func (r *Registry) Partitions() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	partitions := make([]Entity, 0, len(r.byPartition))
	for p := range r.byPartition {
		partitions = append(partitions, p)
	}
	slices.Sort(partitions)
	return partitions
}

// Schemas returns the descriptors of all registered kinds, sorted by partition.
func (r *Registry) Schemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]Schema, 0, len(r.byPartition))
	for _, d := range r.byKind {
		if d.partition == "" {
			continue
		}
		schemas = append(schemas, d.schema())
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Partition < schemas[j].Partition
	})
	return schemas
}

// Indexes returns every relation attribute that needs a secondary index,
// deduplicated and sorted.
func (r *Registry) Indexes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fields []string
	for _, d := range r.byKind {
		for _, rel := range d.relations {
			fields = append(fields, rel.Field)
		}
	}
	slices.Sort(fields)
	return slices.Compact(fields)
}

// Validate checks that the registry is complete: every kind that received
// field markers was registered with a partition, and every relation targets
// a registered partition. Call it once after all registrations.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for kind, d := range r.byKind {
		if d.partition == "" {
			return schemaErrorf(kind.String(), "attributes declared but entity never registered")
		}
		for _, rel := range d.relations {
			if _, ok := r.byPartition[rel.Target]; !ok {
				return schemaErrorf(kind.String(), "relation %q targets unregistered partition %q", rel.Field, rel.Target)
			}
		}
	}
	return nil
}
