package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	IDKey             = "_id"           // must match with Mapping.ID, Asset.ID and Attribute.ID tag
	NameKey           = "name"          // must match with Asset.Name and Attribute.Name tag
	KindKey           = "kind"          // must match with Mapping.Kind tag
	AssetIDKey        = "assetId"       // must match with Mapping.AssetID tag
	AttributeIDKey    = "attributeId"   // must match with Mapping.AttributeID tag
	ValueKey          = "value"         // must match with Mapping.Value tag
	SourceAssetIDKey  = "sourceAssetId" // must match with Mapping.SourceAssetID tag
	ChannelKey        = "channel"       // must match with Mapping.Channel tag
	RefAssetIDKey     = "refAssetId"    // must match with Mapping.RefAssetID tag
	RefAttributeIDKey = "refAttributeId"
	DeletedKey        = "deleted"
	TimestampKey      = "timestamp"
)

var (
	ErrNotSupported = errors.New("not supported")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
)

func errValidation(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func errNotFound(err error) error {
	return fmt.Errorf("%w: %w", ErrNotFound, err)
}

// ErrAssetNotFound reports a missing asset.
func ErrAssetNotFound(id string) error {
	return errNotFound(fmt.Errorf("asset('%v')", id))
}

// ErrAttributeNotFound reports a missing attribute.
func ErrAttributeNotFound(id string) error {
	return errNotFound(fmt.Errorf("attribute('%v')", id))
}

// ErrMappingNotFound reports a missing mapping.
func ErrMappingNotFound(id string) error {
	return errNotFound(fmt.Errorf("mapping('%v')", id))
}

// ErrDuplicateAsset reports an asset id which is already used.
func ErrDuplicateAsset(id string) error {
	return errValidation(fmt.Errorf("asset('%v') already exists", id))
}

// ErrDuplicateAttribute reports an attribute id which is already used.
func ErrDuplicateAttribute(id string) error {
	return errValidation(fmt.Errorf("attribute('%v') already exists", id))
}

// ErrDuplicateMappingID reports a mapping id which is already used.
func ErrDuplicateMappingID(id string) error {
	return errValidation(fmt.Errorf("mapping('%v') already exists", id))
}

// ErrDuplicateMapping reports a second live mapping for the same pair.
func ErrDuplicateMapping(assetID, attributeID string) error {
	return errValidation(fmt.Errorf("mapping for asset('%v') and attribute('%v') already exists", assetID, attributeID))
}

type Asset struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

type Attribute struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

type MappingKind string

const (
	// ValueMapping carries a literal value.
	ValueMapping MappingKind = "value"
	// ClientMapping reads a channel of documents reported by a device.
	ClientMapping MappingKind = "client"
	// ReferenceMapping aliases an attribute of another asset.
	ReferenceMapping MappingKind = "reference"
	// ServerMapping is computed server side and never consulted by the resolver.
	ServerMapping MappingKind = "server"
)

func (k MappingKind) Valid() bool {
	switch k {
	case ValueMapping, ClientMapping, ReferenceMapping, ServerMapping:
		return true
	}
	return false
}

type Mapping struct {
	ID             string      `bson:"_id" json:"id"`
	Kind           MappingKind `bson:"kind" json:"kind"`
	AssetID        string      `bson:"assetId" json:"assetId"`
	AttributeID    string      `bson:"attributeId" json:"attributeId"`
	Value          interface{} `bson:"value,omitempty" json:"value,omitempty"`
	SourceAssetID  string      `bson:"sourceAssetId,omitempty" json:"sourceAssetId,omitempty"`
	Channel        string      `bson:"channel,omitempty" json:"channel,omitempty"`
	RefAssetID     string      `bson:"refAssetId,omitempty" json:"refAssetId,omitempty"`
	RefAttributeID string      `bson:"refAttributeId,omitempty" json:"refAttributeId,omitempty"`
	Deleted        bool        `bson:"deleted" json:"deleted"`
	// Timestamp of the last write in unix nanoseconds.
	Timestamp int64 `bson:"timestamp" json:"timestamp"`
}

// Points reports whether a reference mapping targets the pair.
func (m *Mapping) Points(assetID, attributeID string) bool {
	return m.Kind == ReferenceMapping && m.RefAssetID == assetID && m.RefAttributeID == attributeID
}

func (m *Mapping) Clone() *Mapping {
	c := *m
	return &c
}

// MappingQuery selects live mappings. Empty fields match everything.
type MappingQuery struct {
	AssetID        string
	AttributeID    string
	IncludeDeleted bool
}

func (q MappingQuery) Matches(m *Mapping) bool {
	if !q.IncludeDeleted && m.Deleted {
		return false
	}
	if q.AssetID != "" && m.AssetID != q.AssetID {
		return false
	}
	if q.AttributeID != "" && m.AttributeID != q.AttributeID {
		return false
	}
	return true
}

type Iterator[T any] interface {
	Next(ctx context.Context, v *T) bool
	Err() error
}

type MongoIterator[T any] struct {
	Cursor *mongo.Cursor
	err    error
}

func (i *MongoIterator[T]) Next(ctx context.Context, s *T) bool {
	if !i.Cursor.Next(ctx) {
		return false
	}
	if err := i.Cursor.Decode(s); err != nil {
		i.err = err
		return false
	}
	return true
}

func (i *MongoIterator[T]) Err() error {
	if i.err != nil {
		return i.err
	}
	return i.Cursor.Err()
}

type Process[T any] func(v *T) error

type (
	ProcessMappings = Process[Mapping]
)

// Reader is the read side needed to validate writes and resolve bindings.
type Reader interface {
	// GetAsset returns ErrNotFound when the asset does not exist.
	GetAsset(ctx context.Context, id string) (*Asset, error)
	// GetAttribute returns ErrNotFound when the attribute does not exist.
	GetAttribute(ctx context.Context, id string) (*Attribute, error)
	// GetMappings streams the mappings matching the query.
	GetMappings(ctx context.Context, query MappingQuery, p ProcessMappings) error
}

type Store interface {
	Reader

	// CreateAsset creates a new asset. An empty id is generated.
	CreateAsset(ctx context.Context, asset *Asset) (*Asset, error)
	// DeleteAsset removes the asset and soft deletes its mappings.
	DeleteAsset(ctx context.Context, id string) error

	// CreateAttribute creates a new attribute. An empty id is generated.
	CreateAttribute(ctx context.Context, attribute *Attribute) (*Attribute, error)
	// DeleteAttribute removes the attribute and soft deletes its mappings.
	DeleteAttribute(ctx context.Context, id string) error

	// CreateMapping validates and stores a new mapping.
	CreateMapping(ctx context.Context, mapping *Mapping) (*Mapping, error)
	// DeleteMapping marks the mapping as deleted.
	DeleteMapping(ctx context.Context, id string) error

	Close(ctx context.Context) error
}

// LoadMappings collects the mappings matching the query.
func LoadMappings(ctx context.Context, r Reader, query MappingQuery) ([]*Mapping, error) {
	var mappings []*Mapping
	err := r.GetMappings(ctx, query, func(m *Mapping) error {
		mappings = append(mappings, m.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

func ValidateAsset(a *Asset) error {
	if a == nil {
		return errValidation(errors.New("asset is nil"))
	}
	if a.Name == "" {
		return errValidation(fmt.Errorf("name('%v')", a.Name))
	}
	return nil
}

func ValidateAttribute(a *Attribute) error {
	if a == nil {
		return errValidation(errors.New("attribute is nil"))
	}
	if a.Name == "" {
		return errValidation(fmt.Errorf("name('%v')", a.Name))
	}
	return nil
}

// ValidateMapping checks the fields required by the mapping kind.
func ValidateMapping(m *Mapping) error {
	if m == nil {
		return errValidation(errors.New("mapping is nil"))
	}
	if m.AssetID == "" {
		return errValidation(fmt.Errorf("assetId('%v')", m.AssetID))
	}
	if m.AttributeID == "" {
		return errValidation(fmt.Errorf("attributeId('%v')", m.AttributeID))
	}
	switch m.Kind {
	case ValueMapping:
		if m.Value == nil {
			return errValidation(errors.New("value is required"))
		}
	case ClientMapping, ServerMapping:
		if err := ValidateChannel(m.Channel); err != nil {
			return errValidation(err)
		}
	case ReferenceMapping:
		if m.RefAssetID == "" {
			return errValidation(fmt.Errorf("refAssetId('%v')", m.RefAssetID))
		}
		if m.RefAttributeID == "" {
			return errValidation(fmt.Errorf("refAttributeId('%v')", m.RefAttributeID))
		}
		if m.RefAssetID == m.AssetID && m.RefAttributeID == m.AttributeID {
			return errValidation(errors.New("mapping cannot reference itself"))
		}
	default:
		return errValidation(fmt.Errorf("kind('%v')", m.Kind))
	}
	return nil
}

// ValidateChannel checks that a channel is a dotted document field path:
// no empty segments and no leading '$'.
func ValidateChannel(channel string) error {
	if channel == "" || strings.HasPrefix(channel, "$") {
		return fmt.Errorf("channel('%v')", channel)
	}
	for _, segment := range strings.Split(channel, ".") {
		if segment == "" {
			return fmt.Errorf("channel('%v') - empty path segment", channel)
		}
	}
	return nil
}

func requireExists(err error, what error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return errValidation(what)
	}
	return err
}

// ValidateMappingWrite validates a new mapping against the stored state: the
// referenced assets and attributes must exist, the pair must not have a live
// mapping yet and a reference must not exactly reverse an existing reference.
// Longer reference cycles are accepted here.
func ValidateMappingWrite(ctx context.Context, r Reader, m *Mapping) error {
	if err := ValidateMapping(m); err != nil {
		return err
	}
	if _, err := r.GetAsset(ctx, m.AssetID); err != nil {
		return requireExists(err, fmt.Errorf("assetId('%v') does not exist", m.AssetID))
	}
	if _, err := r.GetAttribute(ctx, m.AttributeID); err != nil {
		return requireExists(err, fmt.Errorf("attributeId('%v') does not exist", m.AttributeID))
	}
	if m.Kind == ClientMapping && m.SourceAssetID != "" {
		if _, err := r.GetAsset(ctx, m.SourceAssetID); err != nil {
			return requireExists(err, fmt.Errorf("sourceAssetId('%v') does not exist", m.SourceAssetID))
		}
	}
	existing, err := LoadMappings(ctx, r, MappingQuery{AssetID: m.AssetID, AttributeID: m.AttributeID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrDuplicateMapping(m.AssetID, m.AttributeID)
	}
	if m.Kind != ReferenceMapping {
		return nil
	}
	if _, err := r.GetAsset(ctx, m.RefAssetID); err != nil {
		return requireExists(err, fmt.Errorf("refAssetId('%v') does not exist", m.RefAssetID))
	}
	if _, err := r.GetAttribute(ctx, m.RefAttributeID); err != nil {
		return requireExists(err, fmt.Errorf("refAttributeId('%v') does not exist", m.RefAttributeID))
	}
	targets, err := LoadMappings(ctx, r, MappingQuery{AssetID: m.RefAssetID, AttributeID: m.RefAttributeID})
	if err != nil {
		return err
	}
	for _, t := range targets {
		if t.Points(m.AssetID, m.AttributeID) {
			return errValidation(fmt.Errorf("asset('%v') attribute('%v') already references asset('%v') attribute('%v')", m.RefAssetID, m.RefAttributeID, m.AssetID, m.AttributeID))
		}
	}
	return nil
}

// PrepareMapping returns a copy of the mapping ready to be stored.
func PrepareMapping(m *Mapping) *Mapping {
	n := m.Clone()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Deleted = false
	n.Timestamp = time.Now().UnixNano()
	return n
}

func PrepareAsset(a *Asset) *Asset {
	n := *a
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return &n
}

func PrepareAttribute(a *Attribute) *Attribute {
	n := *a
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return &n
}
