package config

import (
	"context"
	"fmt"

	"github.com/plgd-dev/assethub/mapping/store"
	"github.com/plgd-dev/assethub/mapping/store/cqldb"
	"github.com/plgd-dev/assethub/mapping/store/mongodb"
	"github.com/plgd-dev/assethub/mapping/store/postgres"
	"github.com/plgd-dev/assethub/pkg/config/database"
	"github.com/plgd-dev/assethub/pkg/log"
	"go.opentelemetry.io/otel/trace"
)

// Open creates the mapping store selected by the configuration.
func Open(ctx context.Context, cfg Config, logger log.Logger, tracerProvider trace.TracerProvider) (store.Store, error) {
	switch cfg.Use {
	case database.MongoDB:
		s, err := mongodb.New(ctx, cfg.MongoDB, tracerProvider)
		if err != nil {
			return nil, fmt.Errorf("mongoDB: %w", err)
		}
		return s, nil
	case database.CqlDB:
		s, err := cqldb.New(ctx, cfg.CqlDB, logger)
		if err != nil {
			return nil, fmt.Errorf("cqlDB: %w", err)
		}
		return s, nil
	case database.Postgres:
		s, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("invalid store use('%v')", cfg.Use)
}
