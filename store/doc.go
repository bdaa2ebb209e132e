// Package store provides a schema-driven DynamoDB data access layer for many
// small entity kinds sharing one table.
//
// Every record lives in a single table, partitioned by a project-scoped
// entity name ("sadalsuud-user", "altarf-quiz") and identified within the
// partition by a generated creationId. Which attributes are queryable is
// declared once at startup in a [Registry]; operations then derive their
// keys and secondary index names from it.
//
// # Entity Shapes
//
// An entity shape is any struct embedding [DbKey]:
//
//	type User struct {
//	    store.DbKey
//	    LineUserID string `dynamodbav:"lineUserId"`
//	    Name       string `dynamodbav:"name"`
//	}
//
// # Registration
//
// Registration order does not matter; field markers may precede the entity:
//
//	r := store.NewRegistry()
//	store.RegisterEntity[User](r, "sadalsuud-user")
//	store.RegisterPrimaryAttribute[User](r, "creationId")
//	store.RegisterRelatedAttributeMany[User](r, "lineUserId", "sadalsuud-user")
//	if err := r.Validate(); err != nil { ... }
//
// Repeating an identical registration is a no-op. A conflicting one returns
// a [*SchemaError].
//
// # Operations
//
//   - [PutItem] writes the full record at its key (last writer wins)
//   - [GetItem] reads by key; absence is a nil result, not an error
//   - [Query] reads every record of a partition matching a relation attribute
//   - [QueryAll] reads a whole partition
//   - [FindUnique] applies an at-most-one guard on top of [Query]
//
// Each relation attribute f is served by the secondary index "f-index"
// (hash key f, range key the partition attribute). [TableDefinition] builds
// the matching table layout.
//
// # Errors
//
//   - [ErrSchema] - registry misuse, matched by [*SchemaError]
//   - [ErrStore] - backing store failure, matched by [*StoreError]
//   - [ErrCardinality] - several records share a unique value, matched by [*CardinalityError]
//   - [ErrInvalidKey] - empty creationId
package store
