// Package stream provides a DynamoDB Streams handler that dispatches changes
// of the single table to per-partition subscribers.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/constellation/store"
)

// Stream event names.
const (
	EventInsert = "INSERT"
	EventModify = "MODIFY"
	EventRemove = "REMOVE"
)

// Change is one decoded stream record.
type Change struct {
	EventID   string
	EventName string
	Key       store.DbKey
	Schema    store.Schema

	// OldImage is nil for INSERT; NewImage is nil for REMOVE.
	OldImage store.Item
	NewImage store.Item
}

// Subscriber receives changes of one partition. Returning an error aborts the
// batch so that Lambda retries it.
type Subscriber func(ctx context.Context, change Change) error

// Handler processes DynamoDB stream events for the single table.
type Handler struct {
	registry *store.Registry
	config   store.Config
	logger   *slog.Logger

	mu          sync.RWMutex
	subscribers map[store.Entity][]Subscriber
}

// NewHandler creates a new stream handler. A nil registry means the default registry.
func NewHandler(r *store.Registry, cfg store.Config, logger *slog.Logger) *Handler {
	if r == nil {
		r = store.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PartitionKeyAttr == "" {
		cfg.PartitionKeyAttr = store.DefaultConfig().PartitionKeyAttr
	}
	return &Handler{
		registry:    r,
		config:      cfg,
		logger:      logger,
		subscribers: make(map[store.Entity][]Subscriber),
	}
}

// Subscribe registers fn for changes of partition.
func (h *Handler) Subscribe(partition store.Entity, fn Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[partition] = append(h.subscribers[partition], fn)
}

// HandleEvent processes a batch of stream records in order.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleEvent(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	partition := store.Entity(getStringAttr(record.Change.Keys, h.config.PartitionKeyAttr))
	if partition == "" {
		h.logger.Warn("skipping record without partition key",
			"eventID", record.EventID,
			"eventName", record.EventName,
		)
		return nil
	}

	schema, err := h.registry.DescribePartition(partition)
	if err != nil {
		h.logger.Warn("skipping record of unregistered partition",
			"eventID", record.EventID,
			"partition", partition,
		)
		return nil
	}

	h.mu.RLock()
	subs := h.subscribers[partition]
	h.mu.RUnlock()
	if len(subs) == 0 {
		return nil
	}

	primary := schema.PrimaryField
	if primary == "" {
		primary = store.AttrCreationID
	}
	change := Change{
		EventID:   record.EventID,
		EventName: record.EventName,
		Key: store.DbKey{
			ProjectEntity: partition,
			CreationID:    getStringAttr(record.Change.Keys, primary),
		},
		Schema:   schema,
		OldImage: ConvertImage(record.Change.OldImage),
		NewImage: ConvertImage(record.Change.NewImage),
	}

	h.logger.Debug("dispatching change",
		"eventName", change.EventName,
		"key", change.Key.String(),
		"subscribers", len(subs),
	)

	for _, fn := range subs {
		if err := fn(ctx, change); err != nil {
			return fmt.Errorf("subscriber for %s: %w", change.Key, err)
		}
	}
	return nil
}

// Decode unmarshals a change image into an entity shape.
// It returns nil for a nil image.
func Decode[T store.Keyed](image store.Item) (*T, error) {
	if image == nil {
		return nil, nil
	}
	var out T
	if err := attributevalue.UnmarshalMap(image, &out); err != nil {
		return nil, fmt.Errorf("decode stream image: %w", err)
	}
	return &out, nil
}

// LogChanges returns a subscriber that logs every change at Info level.
func LogChanges(logger *slog.Logger) Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, change Change) error {
		logger.InfoContext(ctx, "entity changed",
			"eventName", change.EventName,
			"kind", change.Schema.Kind,
			"key", change.Key.String(),
		)
		return nil
	}
}
