// Package storetest provides an in-memory DynamoDB client for testing code
// built on the store package.
//
// The Client understands the subset of DynamoDB the store uses: PutItem and
// GetItem by table key, and Query with equality key conditions on the table
// or on any index. Index queries scan the table, so every attribute behaves
// as if it had a secondary index.
//
//	client := storetest.NewClient()
//	s := store.NewWithRegistry(client, store.DefaultConfig(), registry)
//
// Failures are injected through PutErr, GetErr and QueryErr.
package storetest

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/constellation/store"
)

const offsetAttr = "_storetest_offset"

var conditionPattern = regexp.MustCompile(`([#\w]+)\s*=\s*(:\w+)`)

// Client is an in-memory implementation of store.DynamoDBClient.
type Client struct {
	// HashKey and RangeKey name the table key attributes.
	HashKey  string
	RangeKey string

	// PageSize splits query results into pages when > 0.
	PageSize int

	// PutErr, GetErr and QueryErr are returned by the matching operation when set.
	PutErr   error
	GetErr   error
	QueryErr error

	mu        sync.Mutex
	tables    map[string]map[string]store.Item
	puts      int
	gets      int
	queries   int
	lastQuery *dynamodb.QueryInput
}

var _ store.DynamoDBClient = (*Client)(nil)

// NewClient creates an empty client using the default store key layout.
func NewClient() *Client {
	cfg := store.DefaultConfig()
	return &Client{
		HashKey:  cfg.PartitionKeyAttr,
		RangeKey: store.AttrCreationID,
		tables:   make(map[string]map[string]store.Item),
	}
}

// PutItem replaces the item stored at its key.
func (c *Client) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.PutErr != nil {
		return nil, c.PutErr
	}

	id, err := c.keyString(params.Item)
	if err != nil {
		return nil, err
	}
	c.table(aws.ToString(params.TableName))[id] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem returns the item at the given key; Item is nil when absent.
func (c *Client) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	if len(params.Key) != 2 {
		return nil, fmt.Errorf("storetest: key must have exactly 2 attributes, got %d", len(params.Key))
	}

	id, err := c.keyString(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := c.table(aws.ToString(params.TableName))[id]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

// Query returns every item matching all equality conditions of the key
// condition expression, in key order.
func (c *Client) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	c.lastQuery = params

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.QueryErr != nil {
		return nil, c.QueryErr
	}

	conds, err := parseConditions(params)
	if err != nil {
		return nil, err
	}

	table := c.table(aws.ToString(params.TableName))
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var matched []store.Item
	for _, id := range ids {
		if matches(table[id], conds) {
			matched = append(matched, copyItem(table[id]))
		}
	}

	offset := 0
	if v, ok := params.ExclusiveStartKey[offsetAttr].(*types.AttributeValueMemberN); ok {
		offset, _ = strconv.Atoi(v.Value)
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	page := matched[offset:]

	out := &dynamodb.QueryOutput{}
	if c.PageSize > 0 && len(page) > c.PageSize {
		page = page[:c.PageSize]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			offsetAttr: &types.AttributeValueMemberN{Value: strconv.Itoa(offset + c.PageSize)},
		}
	}
	out.Items = page
	out.Count = int32(len(page))
	return out, nil
}

// Seed stores raw items in a table, bypassing the store.
func (c *Client) Seed(tableName string, items ...store.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		id, err := c.keyString(item)
		if err != nil {
			return err
		}
		c.table(tableName)[id] = copyItem(item)
	}
	return nil
}

// Len returns the number of items stored in a table.
func (c *Client) Len(tableName string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tables[tableName])
}

// Calls returns how many put, get and query calls were made.
func (c *Client) Calls() (puts, gets, queries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts, c.gets, c.queries
}

// LastQuery returns the input of the most recent Query call.
func (c *Client) LastQuery() *dynamodb.QueryInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastQuery
}

// table returns the named table, creating it. Caller must hold c.mu.
func (c *Client) table(name string) map[string]store.Item {
	if c.tables == nil {
		c.tables = make(map[string]map[string]store.Item)
	}
	t, ok := c.tables[name]
	if !ok {
		t = make(map[string]store.Item)
		c.tables[name] = t
	}
	return t
}

func (c *Client) keyString(item store.Item) (string, error) {
	hash, ok := item[c.HashKey].(*types.AttributeValueMemberS)
	if !ok || hash.Value == "" {
		return "", fmt.Errorf("storetest: missing hash key %q", c.HashKey)
	}
	rng, ok := item[c.RangeKey].(*types.AttributeValueMemberS)
	if !ok || rng.Value == "" {
		return "", fmt.Errorf("storetest: missing range key %q", c.RangeKey)
	}
	return hash.Value + "\x00" + rng.Value, nil
}

type condition struct {
	attr  string
	value types.AttributeValue
}

func parseConditions(params *dynamodb.QueryInput) ([]condition, error) {
	expr := aws.ToString(params.KeyConditionExpression)
	found := conditionPattern.FindAllStringSubmatch(expr, -1)
	if len(found) == 0 {
		return nil, fmt.Errorf("storetest: unsupported key condition %q", expr)
	}

	conds := make([]condition, 0, len(found))
	for _, m := range found {
		attr := m[1]
		if attr[0] == '#' {
			name, ok := params.ExpressionAttributeNames[attr]
			if !ok {
				return nil, fmt.Errorf("storetest: undefined attribute name %s", attr)
			}
			attr = name
		}
		value, ok := params.ExpressionAttributeValues[m[2]]
		if !ok {
			return nil, fmt.Errorf("storetest: undefined attribute value %s", m[2])
		}
		conds = append(conds, condition{attr: attr, value: value})
	}
	return conds, nil
}

func matches(item store.Item, conds []condition) bool {
	for _, cond := range conds {
		got, ok := item[cond.attr]
		if !ok || !equalValue(got, cond.value) {
			return false
		}
	}
	return true
}

func equalValue(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	default:
		return reflect.DeepEqual(a, b)
	}
}

func copyItem(item store.Item) store.Item {
	out := make(store.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
