package mongodb_test

import (
	"testing"
	"time"

	"github.com/plgd-dev/assethub/pkg/mongodb"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     mongodb.Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  mongodb.Config{URI: "mongodb://localhost:27017", Database: "assethub", MaxConnIdleTime: time.Minute},
		},
		{
			name:    "missing uri",
			cfg:     mongodb.Config{Database: "assethub"},
			wantErr: true,
		},
		{
			name:    "missing database",
			cfg:     mongodb.Config{URI: "mongodb://localhost:27017"},
			wantErr: true,
		},
		{
			name:    "negative idle time",
			cfg:     mongodb.Config{URI: "mongodb://localhost:27017", Database: "assethub", MaxConnIdleTime: -time.Second},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
