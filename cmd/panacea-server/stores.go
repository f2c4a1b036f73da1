package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/panacea/panacea/internal/config"
	"github.com/panacea/panacea/internal/domain/clinical"
	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/domain/patient"
	"github.com/panacea/panacea/internal/domain/scheduling"
	"github.com/panacea/panacea/internal/domain/ward"
	"github.com/panacea/panacea/internal/platform/audit"
	"github.com/panacea/panacea/internal/platform/db"
	"github.com/panacea/panacea/internal/platform/mongodb"
	"github.com/panacea/panacea/migrations"
	"github.com/panacea/panacea/pkg/envelope"
)

// stores is one repository per entity, all backed by the same driver.
type stores struct {
	users        identity.Repository
	patients     patient.Repository
	appointments scheduling.Repository
	records      clinical.Repository
	wards        ward.Repository
	audit        audit.Store

	ping  echo.HandlerFunc
	close func(ctx context.Context)
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, database, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		n, err := mongodb.EnsureIndexes(ctx, database)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info().Int("indexes", n).Msg("mongo indexes ensured")
		return &stores{
			users:        identity.NewMongoRepo(database),
			patients:     patient.NewMongoRepo(database),
			appointments: scheduling.NewMongoRepo(database),
			records:      clinical.NewMongoRepo(database),
			wards:        ward.NewMongoRepo(database),
			audit:        audit.NewMongoStore(database),
			ping:         mongodb.HealthHandler(client),
			close:        func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return nil, err
		}
		pending, err := db.NewMigrator(pool, migrations.FS).Pending(ctx)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("check migrations: %w", err)
		}
		if pending > 0 {
			logger.Warn().Int("pending", pending).Msg("database has pending migrations; run: panacea-server migrate up")
		}
		return &stores{
			users:        identity.NewPGRepo(pool),
			patients:     patient.NewPGRepo(pool),
			appointments: scheduling.NewPGRepo(pool),
			records:      clinical.NewPGRepo(pool),
			wards:        ward.NewPGRepo(pool),
			audit:        audit.NewPGStore(pool),
			ping:         db.HealthHandler(pool),
			close:        func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		return memoryStores(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func memoryStores() *stores {
	return &stores{
		users:        identity.NewMemoryRepo(),
		patients:     patient.NewMemoryRepo(),
		appointments: scheduling.NewMemoryRepo(),
		records:      clinical.NewMemoryRepo(),
		wards:        ward.NewMemoryRepo(),
		audit:        audit.NewMemoryStore(),
		ping: func(c echo.Context) error {
			return envelope.Respond(c, http.StatusOK, "Store operational", map[string]any{"driver": config.DriverMemory})
		},
		close: func(context.Context) {},
	}
}

func poolConfig(cfg *config.Config) db.PoolConfig {
	return db.PoolConfig{
		URL:         cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		IdleTimeout: 5 * time.Minute,
	}
}
