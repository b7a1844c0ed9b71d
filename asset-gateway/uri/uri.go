package uri

const (
	AssetIDKey      = "assetId"
	AttributeIDKey  = "attributeId"
	MappingIDKey    = "mappingId"
	ResourceTypeKey = "resourceType"

	FromQueryKey        = "from"
	ToQueryKey          = "to"
	CadenceQueryKey     = "cadence"
	AttributeIDQueryKey = "attributeId"

	API = "/api/v1"

	// POST /api/v1/assets
	Assets = API + "/assets"
	// DELETE /api/v1/assets/{assetId}
	Asset = Assets + "/{" + AssetIDKey + "}"
	// GET /api/v1/assets/{assetId}/attributes/{attributeId}/binding
	Binding = Asset + "/attributes/{" + AttributeIDKey + "}/binding"
	// GET /api/v1/assets/{assetId}/history?attributeId=...&from=...&to=...&cadence=...
	History = Asset + "/history"

	// POST /api/v1/attributes
	Attributes = API + "/attributes"
	// DELETE /api/v1/attributes/{attributeId}
	Attribute = Attributes + "/{" + AttributeIDKey + "}"

	// POST /api/v1/mappings
	Mappings = API + "/mappings"
	// DELETE /api/v1/mappings/{mappingId}
	Mapping = Mappings + "/{" + MappingIDKey + "}"

	// GET, POST /api/v1/resources/{resourceType}
	Resources = API + "/resources/{" + ResourceTypeKey + "}"

	// GET /api/v1/lifecycle/{resourceType}/windows?from=...&to=...
	Windows = API + "/lifecycle/{" + ResourceTypeKey + "}/windows"

	Metrics     = "/metrics"
	Healthcheck = "/healthcheck"
)
