package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/frontdesk/internal/cache"
	"github.com/pkordes/frontdesk/internal/config"
)

// memoryCache is the CACHE_PATH value that keeps the local cache in memory.
const memoryCache = "memory"

// newLogger builds the JSON logger used by every command. An unknown level
// falls back to info.
func newLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// openPool connects to Postgres and verifies the connection before
// returning, so commands fail fast on a bad DATABASE_URL.
func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// openSQLDB opens a database/sql handle for goose.
func openSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// openCache selects the local cache: Redis when REDIS_URL is set, memory
// when CACHE_PATH is "memory", and a SQLite file otherwise. The returned
// close function is never nil.
func openCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, func() error, error) {
	switch {
	case cfg.RedisURL != "":
		r, err := cache.NewRedis(ctx, cfg.RedisURL, "frontdesk:")
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis cache")
		return r, r.Close, nil
	case cfg.CachePath == memoryCache:
		log.Info("using in-memory cache; snapshots will not survive a restart")
		return cache.NewMemory(), func() error { return nil }, nil
	default:
		s, err := cache.Open(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using sqlite cache", "path", cfg.CachePath)
		return s, s.Close, nil
	}
}
