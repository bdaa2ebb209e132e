package store

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Store provides schema-driven put, get and query over a single DynamoDB table.
// It holds no record state; the table is the sole owner of data.
type Store struct {
	client   DynamoDBClient
	config   Config
	registry *Registry
	logger   *slog.Logger
}

// New creates a new Store backed by the process-wide registry.
func New(client DynamoDBClient, config Config) *Store {
	return NewWithRegistry(client, config, DefaultRegistry())
}

// NewWithRegistry creates a new Store instance with an explicit schema registry.
func NewWithRegistry(client DynamoDBClient, config Config, registry *Registry) *Store {
	config.validate()
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Store{
		client:   client,
		config:   config,
		registry: registry,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger used for debug output. A nil logger restores slog.Default().
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
}

// Registry returns the schema registry.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.config
}

// PutItem writes the full record at the item's key, overwriting any existing
// record. Fields are never merged with a previous version.
func PutItem[T Keyed](ctx context.Context, s *Store, item T) error {
	schema, err := s.directSchema(kindOf[T]())
	if err != nil {
		return err
	}
	key := item.Key()
	if err := checkPartition(schema, key.ProjectEntity); err != nil {
		return err
	}
	if key.CreationID == "" {
		return ErrInvalidKey
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("constellation: marshal %s: %w", schema.Kind, err)
	}
	for name, value := range s.keyFor(schema, key) {
		av[name] = value
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.TableName),
		Item:      av,
	})
	if err != nil {
		return &StoreError{Op: "put", Partition: key.ProjectEntity, Err: err}
	}

	s.logger.Debug("put item", "key", key.String())
	return nil
}

// GetItem returns the record at key, or nil when no record exists.
// Absence is a normal outcome, not an error.
func GetItem[T Keyed](ctx context.Context, s *Store, key DbKey) (*T, error) {
	schema, err := s.directSchema(kindOf[T]())
	if err != nil {
		return nil, err
	}
	if err := checkPartition(schema, key.ProjectEntity); err != nil {
		return nil, err
	}
	if key.CreationID == "" {
		return nil, ErrInvalidKey
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       s.keyFor(schema, key),
	})
	if err != nil {
		return nil, &StoreError{Op: "get", Partition: key.ProjectEntity, Err: err}
	}
	if out == nil || out.Item == nil {
		s.logger.Debug("get item: absent", "key", key.String())
		return nil, nil
	}

	var result T
	if err := attributevalue.UnmarshalMap(out.Item, &result); err != nil {
		return nil, &StoreError{Op: "get", Partition: key.ProjectEntity, Err: fmt.Errorf("malformed item: %w", err)}
	}
	return &result, nil
}

// Query returns every record in partition whose relation attribute equals
// filter.Value. Order is unspecified. No match yields an empty slice.
// Uniqueness is never enforced here; see FindUnique.
func Query[T Keyed](ctx context.Context, s *Store, partition Entity, filter Filter) ([]T, error) {
	schema, err := s.registry.describe(kindOf[T]())
	if err != nil {
		return nil, err
	}
	if err := checkPartition(schema, partition); err != nil {
		return nil, err
	}
	if _, ok := schema.Relation(filter.Attribute); !ok {
		return nil, schemaErrorf(schema.Kind, "attribute %q is not a declared relation", filter.Attribute)
	}
	if filter.Value == nil {
		return nil, fmt.Errorf("constellation: query %s: nil value for %q", partition, filter.Attribute)
	}

	keyCond := expression.Key(filter.Attribute).Equal(expression.Value(filter.Value)).
		And(expression.Key(s.config.PartitionKeyAttr).Equal(expression.Value(string(partition))))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("constellation: build query on %q: %w", filter.Attribute, err)
	}

	items, err := queryPages[T](ctx, s, partition, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		IndexName:                 aws.String(s.config.IndexName(filter.Attribute)),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query", "partition", partition, "attribute", filter.Attribute, "count", len(items))
	return items, nil
}

// QueryAll returns every record stored in partition.
func QueryAll[T Keyed](ctx context.Context, s *Store, partition Entity) ([]T, error) {
	schema, err := s.registry.describe(kindOf[T]())
	if err != nil {
		return nil, err
	}
	if err := checkPartition(schema, partition); err != nil {
		return nil, err
	}

	keyCond := expression.Key(s.config.PartitionKeyAttr).Equal(expression.Value(string(partition)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("constellation: build partition query: %w", err)
	}

	items, err := queryPages[T](ctx, s, partition, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query all", "partition", partition, "count", len(items))
	return items, nil
}

// FindUnique looks up a record by an alternate key that is unique by business
// rule but not enforced by the table. It returns nil when nothing matches, the
// record when exactly one matches, and a *CardinalityError otherwise.
func FindUnique[T Keyed](ctx context.Context, s *Store, partition Entity, filter Filter) (*T, error) {
	items, err := Query[T](ctx, s, partition, filter)
	if err != nil {
		return nil, err
	}

	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	default:
		return nil, &CardinalityError{
			Partition: partition,
			Attribute: filter.Attribute,
			Value:     filter.Value,
			Count:     len(items),
		}
	}
}

// queryPages follows pagination to completion and unmarshals every item.
func queryPages[T Keyed](ctx context.Context, s *Store, partition Entity, input *dynamodb.QueryInput) ([]T, error) {
	results := []T{}
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &StoreError{Op: "query", Partition: partition, Err: err}
		}
		for _, raw := range page.Items {
			var item T
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, &StoreError{Op: "query", Partition: partition, Err: fmt.Errorf("malformed item: %w", err)}
			}
			results = append(results, item)
		}
	}
	return results, nil
}

// directSchema describes a kind used for direct get and put, which requires
// a primary attribute.
func (s *Store) directSchema(kind reflect.Type) (Schema, error) {
	schema, err := s.registry.describe(kind)
	if err != nil {
		return Schema{}, err
	}
	if schema.PrimaryField == "" {
		return Schema{}, schemaErrorf(schema.Kind, "no primary attribute registered")
	}
	return schema, nil
}

// keyFor builds the table key of a record.
func (s *Store) keyFor(schema Schema, key DbKey) Item {
	return Item{
		s.config.PartitionKeyAttr: &types.AttributeValueMemberS{Value: string(key.ProjectEntity)},
		schema.PrimaryField:       &types.AttributeValueMemberS{Value: key.CreationID},
	}
}

func checkPartition(schema Schema, partition Entity) error {
	if partition != schema.Partition {
		return schemaErrorf(schema.Kind, "partition %q does not match registered partition %q", partition, schema.Partition)
	}
	return nil
}
