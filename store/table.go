package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableDefinition derives the single table layout from the registry:
// the partition key attribute as hash key, the shared primary attribute as
// range key, and one global secondary index per declared relation attribute
// (hash key: the relation attribute, range key: the partition key attribute).
//
// Every registered kind must use the same primary attribute, since a table
// has exactly one range key.
func TableDefinition(cfg Config, r *Registry) (*dynamodb.CreateTableInput, error) {
	cfg.validate()

	sortKey := ""
	for _, schema := range r.Schemas() {
		if schema.PrimaryField == "" {
			continue
		}
		if sortKey != "" && schema.PrimaryField != sortKey {
			return nil, schemaErrorf(schema.Kind, "primary attribute %q conflicts with table range key %q", schema.PrimaryField, sortKey)
		}
		sortKey = schema.PrimaryField
	}
	if sortKey == "" {
		sortKey = AttrCreationID
	}

	defined := map[string]bool{cfg.PartitionKeyAttr: true, sortKey: true}
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String(cfg.PartitionKeyAttr), AttributeType: types.ScalarAttributeTypeS},
		{AttributeName: aws.String(sortKey), AttributeType: types.ScalarAttributeTypeS},
	}

	var indexes []types.GlobalSecondaryIndex
	for _, field := range r.Indexes() {
		if !defined[field] {
			attrs = append(attrs, types.AttributeDefinition{
				AttributeName: aws.String(field),
				AttributeType: types.ScalarAttributeTypeS,
			})
			defined[field] = true
		}
		indexes = append(indexes, types.GlobalSecondaryIndex{
			IndexName: aws.String(cfg.IndexName(field)),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(field), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(cfg.PartitionKeyAttr), KeyType: types.KeyTypeRange},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(cfg.TableName),
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(cfg.PartitionKeyAttr), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
	if len(indexes) > 0 {
		input.GlobalSecondaryIndexes = indexes
	}
	return input, nil
}

// TableAPI is the subset of the DynamoDB API needed to create tables.
type TableAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// EnsureTable creates the table described by input unless it already exists,
// then waits up to maxWait for it to become active. It reports whether the
// table was created.
func EnsureTable(ctx context.Context, api TableAPI, input *dynamodb.CreateTableInput, maxWait time.Duration, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tableName := aws.ToString(input.TableName)

	exists, err := tableExists(ctx, api, tableName)
	if err != nil {
		return false, fmt.Errorf("describe table %s: %w", tableName, err)
	}
	if exists {
		logger.Debug("table already exists", "table", tableName)
		return false, nil
	}

	logger.Info("creating table", "table", tableName, "indexes", len(input.GlobalSecondaryIndexes))
	if _, err := api.CreateTable(ctx, input); err != nil {
		return false, fmt.Errorf("create table %s: %w", tableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(api)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}, maxWait); err != nil {
		return true, fmt.Errorf("wait for table %s: %w", tableName, err)
	}

	logger.Info("table created", "table", tableName)
	return true, nil
}

func tableExists(ctx context.Context, api TableAPI, name string) (bool, error) {
	_, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
