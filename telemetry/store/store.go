package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plgd-dev/assethub/query/filter"
	"github.com/plgd-dev/assethub/query/pipeline"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	IDKey           = "_id"
	AssetIDKey      = "assetId"
	TimestampKey    = "timestamp"
	ResourceIDKey   = "resourceId"
	ResourceTypeKey = "resourceType"
	PhaseKey        = "phase"
	PayloadKey      = "payload"
)

var ErrInvalidDocument = errors.New("invalid document")

// Document is one timestamped record of a collection.
type Document map[string]interface{}

func (d Document) Timestamp() (time.Time, bool) {
	t, ok := d[TimestampKey].(time.Time)
	return t, ok
}

func (d Document) AssetID() string {
	s, _ := d[AssetIDKey].(string)
	return s
}

type Phase string

const (
	PhaseCreate  Phase = "create"
	PhaseDestroy Phase = "destroy"
)

type LifecycleEvent struct {
	ResourceID   string                 `bson:"resourceId" json:"resourceId"`
	ResourceType string                 `bson:"resourceType" json:"resourceType"`
	Phase        Phase                  `bson:"phase" json:"phase"`
	Timestamp    time.Time              `bson:"timestamp" json:"timestamp"`
	Payload      map[string]interface{} `bson:"payload,omitempty" json:"payload,omitempty"`
}

// LifecycleEventFromDocument converts a stored lifecycle document.
func LifecycleEventFromDocument(d Document) LifecycleEvent {
	ev := LifecycleEvent{}
	ev.ResourceID, _ = d[ResourceIDKey].(string)
	ev.ResourceType, _ = d[ResourceTypeKey].(string)
	phase, _ := d[PhaseKey].(string)
	ev.Phase = Phase(phase)
	ev.Timestamp, _ = d.Timestamp()
	switch p := d[PayloadKey].(type) {
	case map[string]interface{}:
		ev.Payload = p
	case Document:
		ev.Payload = p
	}
	return ev
}

type FindOptions struct {
	Sort       []pipeline.SortField
	Pagination pipeline.Pagination
}

// DocumentStore reads and appends documents of timestamped collections.
type DocumentStore interface {
	// Insert appends normalized documents to the collection.
	Insert(ctx context.Context, collection string, docs []Document) error
	// Find returns the documents matching all predicates.
	Find(ctx context.Context, collection string, predicates []filter.Predicate, opts FindOptions) ([]Document, error)
	// Aggregate runs the pipeline on the collection.
	Aggregate(ctx context.Context, collection string, p mongo.Pipeline) ([]Document, error)
	// AggregateDatabase runs a pipeline starting with a $documents stage.
	AggregateDatabase(ctx context.Context, p mongo.Pipeline) ([]Document, error)
	Close(ctx context.Context) error
}

func parseTimestamp(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported type %T", v)
}

// NormalizeDocument validates the required keys of a resource document and
// converts its timestamp to UTC time.
func NormalizeDocument(r Resource, doc Document) (Document, error) {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	ts, ok := doc[TimestampKey]
	if !ok {
		return nil, fmt.Errorf("%w: timestamp is required", ErrInvalidDocument)
	}
	t, err := parseTimestamp(ts)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp('%v'): %w", ErrInvalidDocument, ts, err)
	}
	out[TimestampKey] = t
	for _, key := range r.RequiredKeys {
		if s, ok := out[key].(string); !ok || s == "" {
			return nil, fmt.Errorf("%w: %v('%v')", ErrInvalidDocument, key, out[key])
		}
	}
	if r.Name == LifecycleResource {
		switch Phase(out.str(PhaseKey)) {
		case PhaseCreate, PhaseDestroy:
		default:
			return nil, fmt.Errorf("%w: %v('%v')", ErrInvalidDocument, PhaseKey, out[PhaseKey])
		}
	}
	return out, nil
}

func (d Document) str(key string) string {
	s, _ := d[key].(string)
	return s
}

// Get returns the value at the dotted path.
func (d Document) Get(path string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(d)
	for _, part := range strings.Split(path, ".") {
		var m map[string]interface{}
		switch v := cur.(type) {
		case map[string]interface{}:
			m = v
		case Document:
			m = v
		default:
			return nil, false
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
