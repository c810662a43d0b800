package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"docanalysis-backend/internal/shared/telemetry"
)

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectRetries is the number of extra ping attempts after the first.
	ConnectRetries int
	RetryDelay     time.Duration
}

var openDB = sql.Open

// DefaultServerOptions returns defaults for long-running server processes.
// The API waits a little for Postgres, which often starts alongside it.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectRetries:  3,
		RetryDelay:      time.Second,
	}
}

// DefaultMigrateOptions returns defaults for short-lived CLI migrations.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// OptionsFromEnv overrides defaults with DB_* env vars if present. Values
// that fail to parse are logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS":  &opts.MaxOpenConns,
		"DB_MAX_IDLE_CONNS":  &opts.MaxIdleConns,
		"DB_CONNECT_RETRIES": &opts.ConnectRetries,
	}
	for key, dst := range ints {
		if v, ok := envValue(key, strconv.Atoi); ok {
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":   &opts.ConnMaxLifetime,
		"DB_CONN_MAX_IDLE_TIME":  &opts.ConnMaxIdleTime,
		"DB_PING_TIMEOUT":        &opts.PingTimeout,
		"DB_CONNECT_RETRY_DELAY": &opts.RetryDelay,
	}
	for key, dst := range durations {
		if v, ok := envValue(key, time.ParseDuration); ok {
			*dst = v
		}
	}
	return opts
}

// Connect opens a pooled *sql.DB for databaseURL and pings it, retrying
// ConnectRetries times. Callers share the returned handle.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	if err := pingWithRetry(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logPoolStats(db, "db.connected")
	return db, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, opts Options) error {
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	attempts := opts.ConnectRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = Ping(ctx, db, opts.PingTimeout); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		telemetry.Warn("db.connect_retry", map[string]any{
			"attempt": attempt,
			"of":      attempts,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}
	}
	return err
}

// Ping checks connectivity within the given timeout. Used by health checks.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if db == nil {
		return errors.New("database not configured")
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return db.PingContext(pingCtx)
}

func applyOptions(db *sql.DB, opts Options) {
	fallback := DefaultServerOptions()
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = fallback.MaxOpenConns
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = fallback.MaxIdleConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = fallback.ConnMaxLifetime
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func logPoolStats(db *sql.DB, msg string) {
	stats := db.Stats()
	telemetry.Info(msg, map[string]any{
		"open":     stats.OpenConnections,
		"in_use":   stats.InUse,
		"idle":     stats.Idle,
		"wait":     stats.WaitCount,
		"max_open": stats.MaxOpenConnections,
	})
}

func envValue[T any](key string, parse func(string) (T, error)) (T, bool) {
	var zero T
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return zero, false
	}
	val, err := parse(raw)
	if err != nil {
		telemetry.Warn("db.invalid_env", map[string]any{"key": key, "error": err.Error()})
		return zero, false
	}
	return val, true
}
