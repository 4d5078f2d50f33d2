package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrSnapshotNotFound is returned when no catalogue snapshot exists under the store key.
var ErrSnapshotNotFound = errors.New("catalog: snapshot not found")

// DefaultStoreKey is the Redis key used when none is configured.
const DefaultStoreKey = "checkout:catalogue"

const tracerName = "catalog.Store"

type snapshot struct {
	Products map[string]Product `json:"products"`
}

// Store reads and publishes whole catalogue snapshots kept as a JSON document in Redis.
type Store struct {
	client *redis.Client
	key    string
}

// NewStore constructs a snapshot store.
func NewStore(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultStoreKey
	}
	return &Store{client: client, key: key}
}

// Key returns the Redis key holding the snapshot.
func (s *Store) Key() string {
	return s.key
}

// Load fetches the snapshot and builds a validated Catalogue from it.
func (s *Store) Load(ctx context.Context) (cat *Catalogue, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CatalogueStore.Load")
	defer func() { endSpan(span, cat, err) }()

	if s == nil || s.client == nil {
		return nil, errors.New("catalog: store not configured")
	}
	span.SetAttributes(attribute.String("catalog.key", s.key))
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: key %q", ErrSnapshotNotFound, s.key)
		}
		return nil, fmt.Errorf("catalog: read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("catalog: decode snapshot: %w", err)
	}
	return New(snap.Products)
}

// Save publishes c as the current snapshot. Snapshots do not expire.
func (s *Store) Save(ctx context.Context, c *Catalogue) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CatalogueStore.Save")
	defer func() { endSpan(span, c, err) }()

	if s == nil || s.client == nil {
		return errors.New("catalog: store not configured")
	}
	span.SetAttributes(attribute.String("catalog.key", s.key))
	data, err := json.Marshal(snapshot{Products: c.Products()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func endSpan(span trace.Span, c *Catalogue, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("catalog.products", c.Len()))
	}
	span.End()
}
