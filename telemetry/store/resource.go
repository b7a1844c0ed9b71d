package store

import (
	"sort"

	"github.com/plgd-dev/assethub/query/filter"
)

const (
	TelemetryResource = "telemetry"
	LifecycleResource = "lifecycleEvents"
)

// Resource is a queryable collection with its allow-listed fields.
type Resource struct {
	Name         string
	Collection   string
	Schema       filter.Schema
	RequiredKeys []string
}

var (
	AssetIDField      = filter.Field{Name: "asset_id", Key: AssetIDKey, Type: filter.String}
	TimestampField    = filter.Field{Name: "timestamp", Key: TimestampKey, Type: filter.Time}
	ResourceIDField   = filter.Field{Name: "resource_id", Key: ResourceIDKey, Type: filter.String}
	ResourceTypeField = filter.Field{Name: "resource_type", Key: ResourceTypeKey, Type: filter.String}
	PhaseField        = filter.Field{Name: "phase", Key: PhaseKey, Type: filter.String}
)

var resources = map[string]Resource{
	TelemetryResource: {
		Name:       TelemetryResource,
		Collection: TelemetryResource,
		Schema: filter.NewSchema(
			AssetIDField,
			TimestampField,
		),
		RequiredKeys: []string{AssetIDKey},
	},
	LifecycleResource: {
		Name:       LifecycleResource,
		Collection: LifecycleResource,
		Schema: filter.NewSchema(
			ResourceIDField,
			ResourceTypeField,
			PhaseField,
			TimestampField,
		),
		RequiredKeys: []string{ResourceIDKey, ResourceTypeKey},
	},
}

// LookupResource returns the resource of the name.
func LookupResource(name string) (Resource, bool) {
	r, ok := resources[name]
	return r, ok
}

// ResourceNames returns the sorted names of the known resources.
func ResourceNames() []string {
	names := make([]string, 0, len(resources))
	for n := range resources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithFields returns a copy of the resource whose schema also allows the fields.
func (r Resource) WithFields(fields ...filter.Field) Resource {
	all := append(r.Schema.Fields(), fields...)
	r.Schema = filter.NewSchema(all...)
	return r
}
