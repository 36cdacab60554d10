// Package database opens the stores named in the configuration.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-esteban-berger/fit-app/activitystore"
	"github.com/juan-esteban-berger/fit-app/bodymetrics"
	"github.com/juan-esteban-berger/fit-app/internal/config"
	"github.com/juan-esteban-berger/fit-app/pipeline"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Backends holds the open connections. Close releases all of them.
type Backends struct {
	Sources pipeline.Sources
	Cache   pipeline.Cache

	pool   *pgxpool.Pool
	sqlite *activitystore.SQLiteSource
	redis  *redis.Client
	log    logrus.FieldLogger
}

// Open connects every backend the configuration enables. On error anything
// already opened is closed.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (b *Backends, err error) {
	b = &Backends{log: log}
	defer func() {
		if err != nil {
			b.Close()
			b = nil
		}
	}()

	if cfg.Source.Kind == "postgres" || cfg.Database.BodyMetrics {
		if b.pool, err = connectPostgres(ctx, cfg.Database.URL); err != nil {
			return b, err
		}
		log.Info("connected to PostgreSQL")
	}

	switch cfg.Source.Kind {
	case "postgres":
		b.Sources.Activities = activitystore.NewPostgresSource(b.pool)
	case "sqlite":
		if b.sqlite, err = activitystore.OpenSQLite(cfg.Source.SQLitePath); err != nil {
			return b, err
		}
		b.Sources.Activities = b.sqlite
	case "dir":
		b.Sources.Activities = activitystore.NewDirSource(cfg.Source.Dir, log)
	default:
		return b, fmt.Errorf("unsupported source.kind %q", cfg.Source.Kind)
	}

	if cfg.Database.BodyMetrics {
		store := bodymetrics.NewStore(b.pool)
		b.Sources.Body = store
		b.Sources.Strength = store
	}

	if cfg.Redis.Enabled {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err = b.redis.Ping(pingCtx).Err(); err != nil {
			return b, fmt.Errorf("connect to redis: %w", err)
		}
		b.Cache = pipeline.NewRedisCache(b.redis, cfg.Redis.TTL)
		log.Info("connected to Redis")
	}
	return b, nil
}

func connectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Close releases every open backend, logging close errors.
func (b *Backends) Close() {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			b.log.WithError(err).Warn("closing redis")
		}
	}
	if b.sqlite != nil {
		if err := b.sqlite.Close(); err != nil {
			b.log.WithError(err).Warn("closing sqlite")
		}
	}
	if b.pool != nil {
		b.pool.Close()
	}
}
