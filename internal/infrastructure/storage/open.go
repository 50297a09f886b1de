// Package storage opens the durable store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/config"
	"github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/internal/infrastructure/memory"
	"github.com/oksasatya/rentivu/internal/infrastructure/postgres"
	"github.com/oksasatya/rentivu/internal/infrastructure/redisstore"
	"github.com/oksasatya/rentivu/pkg/helpers"
)

// Backend is an opened store plus the clients behind it. Redis and Pool are
// nil unless the matching driver is selected.
type Backend struct {
	Store repository.Storage
	Redis *redis.Client
	Pool  *pgxpool.Pool
}

// Open connects to the configured driver. With migrate set, the Postgres
// schema is brought up to date first.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger, migrate bool) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.StorageRedis:
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("using redis storage")
		return &Backend{Store: redisstore.NewStore(rdb, cfg.StorageChannel), Redis: rdb}, nil

	case config.StoragePostgres:
		if migrate {
			if err := postgres.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), postgres.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.WithField("db", cfg.DBName).Info("using postgres storage")
		store := postgres.NewStore(pool, cfg.StorageChannel).WithListener(pool)
		return &Backend{Store: store, Pool: pool}, nil

	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		return &Backend{Store: memory.NewStore()}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (b *Backend) Close() {
	if b == nil {
		return
	}
	if b.Store != nil {
		_ = b.Store.Close()
	}
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}
