package service

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/binding"
	"github.com/plgd-dev/assethub/history"
	storeConfig "github.com/plgd-dev/assethub/mapping/store/config"
	storeMongo "github.com/plgd-dev/assethub/mapping/store/mongodb"
	"github.com/plgd-dev/assethub/pkg/config/database"
	"github.com/plgd-dev/assethub/pkg/log"
	pkgMongo "github.com/plgd-dev/assethub/pkg/mongodb"
	pkgHttp "github.com/plgd-dev/assethub/pkg/net/http"
	"github.com/plgd-dev/assethub/query/filter"
	documentsMongo "github.com/plgd-dev/assethub/telemetry/store/mongodb"
	"github.com/stretchr/testify/require"
)

func makeTestConfig() Config {
	mongo := pkgMongo.Config{URI: "mongodb://localhost:27017", Database: "assetHub", ConnectTimeout: time.Second}
	return Config{
		Log:  log.MakeDefaultConfig(),
		APIs: APIsConfig{HTTP: pkgHttp.Config{Addr: "localhost:8080"}},
		Clients: ClientsConfig{
			Storage: storeConfig.Config{
				Use:     database.MongoDB,
				MongoDB: &storeMongo.Config{Mongo: mongo},
			},
			Documents: DocumentsConfig{
				MongoDB:         documentsMongo.Config{Mongo: mongo},
				TelemetryFields: []FieldConfig{{Name: "power", Key: "p", Type: "number"}},
			},
		},
		Binding: binding.MakeDefaultConfig(),
		History: history.MakeDefaultConfig(),
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(c *Config)
		wantErr string
	}{
		{name: "valid", cfg: func(*Config) {}},
		{name: "missing address", cfg: func(c *Config) { c.APIs.HTTP.Addr = "" }, wantErr: "apis.http.address"},
		{name: "unknown storage", cfg: func(c *Config) { c.Clients.Storage.Use = "redis" }, wantErr: "clients.storage.use"},
		{name: "missing documents database", cfg: func(c *Config) { c.Clients.Documents.MongoDB.Mongo.Database = "" }, wantErr: "clients.documents.mongoDB.database"},
		{
			name:    "invalid field type",
			cfg:     func(c *Config) { c.Clients.Documents.TelemetryFields[0].Type = "blob" },
			wantErr: "clients.documents.telemetryFields[0].type",
		},
		{name: "invalid history mode", cfg: func(c *Config) { c.History.Mode = "batch" }, wantErr: "history.mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := makeTestConfig()
			tt.cfg(&cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFieldConfigToField(t *testing.T) {
	f, err := FieldConfig{Name: "at", Key: "t", Type: "time"}.ToField()
	require.NoError(t, err)
	require.Equal(t, filter.Field{Name: "at", Key: "t", Type: filter.Time}, f)
	f, err = FieldConfig{Name: "site"}.ToField()
	require.NoError(t, err)
	require.Equal(t, filter.String, f.Type)
	_, err = FieldConfig{Type: "string"}.ToField()
	require.Error(t, err)
}

func TestResourcesFromConfig(t *testing.T) {
	telemetry, lifecycleEvents, err := resources(DocumentsConfig{TelemetryFields: []FieldConfig{{Name: "power", Key: "p", Type: "number"}}})
	require.NoError(t, err)
	f, ok := telemetry.Schema.Field("power")
	require.True(t, ok)
	require.Equal(t, "p", f.DocumentKey())
	require.Equal(t, "lifecycleEvents", lifecycleEvents.Name)
	_, _, err = resources(DocumentsConfig{TelemetryFields: []FieldConfig{{Name: "power", Type: "blob"}}})
	require.Error(t, err)
}
