package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient is the subset of the DynamoDB API the Store uses.
// *dynamodb.Client satisfies it; tests substitute storetest.Client.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DynamoDBClient = (*dynamodb.Client)(nil)

// Item is a raw DynamoDB item.
type Item = map[string]types.AttributeValue

// Filter selects records whose relation attribute equals Value.
type Filter struct {
	// Attribute is a relation field declared with RegisterRelatedAttributeOne
	// or RegisterRelatedAttributeMany.
	Attribute string

	Value any
}
