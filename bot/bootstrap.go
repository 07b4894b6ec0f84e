package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	coreconfig "github.com/okunev/stylebot/core/config"
	coredatabase "github.com/okunev/stylebot/core/database"
	"github.com/okunev/stylebot/core/logger"
	"github.com/okunev/stylebot/session"
	"github.com/okunev/stylebot/styles"
	"github.com/okunev/stylebot/transform"
)

// Bootstrap initializes the logger and assembles the application from
// configuration: session store backend, style catalog, transform gateway.
func Bootstrap(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	return New(cfg, store, buildCatalog(cfg), buildGateway(cfg))
}

func buildStore(cfg *coreconfig.Config) (session.Store, error) {
	switch cfg.Storage.Backend {
	case coreconfig.StoragePostgres:
		dbCfg := coredatabase.Config{
			Host:           cfg.Storage.Postgres.Host,
			Port:           cfg.Storage.Postgres.Port,
			User:           cfg.Storage.Postgres.User,
			Password:       cfg.Storage.Postgres.Password,
			Name:           cfg.Storage.Postgres.Name,
			SSLMode:        cfg.Storage.Postgres.SSLMode,
			MaxConnections: cfg.Storage.Postgres.MaxConnections,
		}
		db, err := coredatabase.Connect(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		if err := coredatabase.RunMigrations(dbCfg); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		return session.NewPostgresStore(db), nil

	case coreconfig.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("bootstrap: redis ping failed: %w", err)
		}
		return session.NewRedisStore(client), nil

	default:
		return session.NewMemoryStore(), nil
	}
}

func buildCatalog(cfg *coreconfig.Config) *styles.Catalog {
	entries := cfg.Styles
	if len(entries) == 0 {
		entries = styles.DefaultStyles()
	}
	return styles.NewCatalog(entries)
}

func buildGateway(cfg *coreconfig.Config) transform.Gateway {
	if cfg.Transform.Mode == coreconfig.TransformModeRemote {
		return transform.NewRemoteGateway(transform.RemoteOptions{
			BaseURL: cfg.Transform.BaseURL,
			Token:   cfg.Transform.Token,
			Timeout: time.Duration(cfg.Transform.TimeoutSeconds) * time.Second,
		})
	}
	return transform.NewLocalGateway()
}
