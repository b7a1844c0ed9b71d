package history

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	pkgTime "github.com/plgd-dev/assethub/pkg/time"
	"github.com/plgd-dev/assethub/telemetry/store"
)

var ErrInvalidArgument = errors.New("invalid argument")

// internal field holding the raw sample timestamp during stitching
const rawTimestampKey = "_ts"

type Request struct {
	AssetID      string
	AttributeIDs []string
	From         time.Time
	To           time.Time
	Cadence      time.Duration
}

func (r Request) Validate(maxTicks int64) error {
	if r.AssetID == "" {
		return fmt.Errorf("%w: assetId('%v')", ErrInvalidArgument, r.AssetID)
	}
	if r.Cadence < time.Second || r.Cadence%time.Second != 0 {
		return fmt.Errorf("%w: cadence('%v') must be a whole number of seconds", ErrInvalidArgument, r.Cadence)
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("%w: from('%v') is after to('%v')", ErrInvalidArgument, r.From, r.To)
	}
	if n := pkgTime.NumTicks(r.From, r.To, r.Cadence); n > maxTicks {
		return fmt.Errorf("%w: %v ticks exceed the limit %v", ErrInvalidArgument, n, maxTicks)
	}
	return nil
}

// Row is one tick of the history: timestamp, assetId and one column per attribute.
type Row map[string]interface{}

func (r Row) Timestamp() time.Time {
	t, _ := r[store.TimestampKey].(time.Time)
	return t
}

// Channel projects the document field Path to the column Name.
type Channel struct {
	Name string
	Path string
}

// Source is a device whose documents carry channels of the asset.
type Source struct {
	AssetID  string
	Channels []Channel
}

// Literal is a constant column.
type Literal struct {
	Name  string
	Value interface{}
}

type Columns struct {
	Sources  []Source
	Literals []Literal
}

func (c *Columns) addChannel(sourceAssetID string, ch Channel) {
	for i := range c.Sources {
		if c.Sources[i].AssetID == sourceAssetID {
			c.Sources[i].Channels = append(c.Sources[i].Channels, ch)
			return
		}
	}
	c.Sources = append(c.Sources, Source{AssetID: sourceAssetID, Channels: []Channel{ch}})
}

func (c *Columns) sort() {
	sort.SliceStable(c.Sources, func(i, j int) bool {
		return c.Sources[i].AssetID < c.Sources[j].AssetID
	})
}

func validColumnName(name string) error {
	switch name {
	case "", store.IDKey, store.TimestampKey, store.AssetIDKey, rawTimestampKey:
		return fmt.Errorf("reserved column name '%v'", name)
	}
	if strings.Contains(name, ".") || strings.HasPrefix(name, "$") {
		return fmt.Errorf("column name '%v' must not contain '.' or start with '$'", name)
	}
	return nil
}
