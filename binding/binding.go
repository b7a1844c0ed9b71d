package binding

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvedAttribute = errors.New("unresolved attribute")
	ErrCycleDetected       = errors.New("cycle detected")
	ErrTransport           = errors.New("store unavailable")
)

type Kind string

const (
	// Literal is a constant value stored with the mapping.
	Literal Kind = "literal"
	// DeviceChannel is a field of the documents reported by a device.
	DeviceChannel Kind = "deviceChannel"
)

// Binding is the terminal source of an attribute.
type Binding struct {
	Kind Kind `json:"kind"`
	// Value of a Literal binding.
	Value interface{} `json:"value,omitempty"`
	// SourceAssetID is the asset whose documents carry the channel.
	SourceAssetID string `json:"sourceAssetId,omitempty"`
	// Channel is the document field path of a DeviceChannel binding.
	Channel string `json:"channel,omitempty"`
	// AssetID and AttributeID identify the pair holding the terminal mapping.
	AssetID     string `json:"assetId"`
	AttributeID string `json:"attributeId"`
	// Hops counts the followed references.
	Hops int `json:"hops"`
}

// Key identifies an (asset, attribute) pair.
type Key struct {
	AssetID     string
	AttributeID string
}

func (k Key) String() string {
	return k.AssetID + "/" + k.AttributeID
}

func errUnresolved(k Key) error {
	return fmt.Errorf("%w: asset('%v') attribute('%v')", ErrUnresolvedAttribute, k.AssetID, k.AttributeID)
}

func errTransport(err error) error {
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// Outcome classifies a resolution result for metrics and logs.
func Outcome(b Binding, err error) string {
	switch {
	case err == nil:
		return string(b.Kind)
	case errors.Is(err, ErrUnresolvedAttribute):
		return "unresolved"
	case errors.Is(err, ErrCycleDetected):
		return "cycle"
	case errors.Is(err, ErrTransport):
		return "transport"
	}
	return "error"
}
