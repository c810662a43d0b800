package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"docanalysis-backend/internal/shared/telemetry"
)

var errRefused = errors.New("connection refused")

// useMockDB makes Connect hand out a sqlmock handle that monitors pings.
func useMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) { return sqlDB, nil }
	prevOut := telemetry.SetOutput(io.Discard)
	t.Cleanup(func() {
		openDB = prev
		telemetry.SetOutput(prevOut)
	})
	return sqlDB, mock
}

func TestOptionsFromEnv(t *testing.T) {
	prevOut := telemetry.SetOutput(io.Discard)
	defer telemetry.SetOutput(prevOut)

	tests := []struct {
		name  string
		env   map[string]string
		check func(Options) bool
	}{
		{
			name:  "pool sizes",
			env:   map[string]string{"DB_MAX_OPEN_CONNS": "7", "DB_MAX_IDLE_CONNS": "3"},
			check: func(o Options) bool { return o.MaxOpenConns == 7 && o.MaxIdleConns == 3 },
		},
		{
			name: "durations",
			env: map[string]string{
				"DB_CONN_MAX_LIFETIME":  "20m",
				"DB_CONN_MAX_IDLE_TIME": "45s",
				"DB_PING_TIMEOUT":       "1s",
			},
			check: func(o Options) bool {
				return o.ConnMaxLifetime == 20*time.Minute && o.ConnMaxIdleTime == 45*time.Second && o.PingTimeout == time.Second
			},
		},
		{
			name:  "connect retries",
			env:   map[string]string{"DB_CONNECT_RETRIES": "0", "DB_CONNECT_RETRY_DELAY": "250ms"},
			check: func(o Options) bool { return o.ConnectRetries == 0 && o.RetryDelay == 250*time.Millisecond },
		},
		{
			name:  "invalid values keep defaults",
			env:   map[string]string{"DB_MAX_OPEN_CONNS": "many", "DB_PING_TIMEOUT": "soon"},
			check: func(o Options) bool { return o.MaxOpenConns == 10 && o.PingTimeout == 5*time.Second },
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if opts := OptionsFromEnv(DefaultServerOptions()); !tt.check(opts) {
				t.Fatalf("unexpected options %+v", opts)
			}
		})
	}
}

func TestConnectAppliesPoolOptions(t *testing.T) {
	_, mock := useMockDB(t)
	mock.ExpectPing()

	db, err := Connect(context.Background(), "postgres://ignored", Options{MaxOpenConns: 7})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestConnectOpenFailure(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return nil, driver.ErrBadConn
	}
	defer func() { openDB = prev }()

	if _, err := Connect(context.Background(), "ignored", DefaultMigrateOptions()); !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
}

func TestPing(t *testing.T) {
	if err := Ping(context.Background(), nil, time.Second); err == nil {
		t.Fatalf("expected error for nil db")
	}

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing()
	if err := Ping(context.Background(), sqlDB, 0); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	mock.ExpectPing().WillReturnError(errRefused)
	if err := Ping(context.Background(), sqlDB, time.Second); err == nil {
		t.Fatalf("expected ping failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	body, err := migrationFiles.ReadFile(migrationsDir + "/" + entries[0].Name())
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, want := range []string{"-- +goose Up", "-- +goose Down", "CREATE TABLE IF NOT EXISTS documents", "CREATE TABLE IF NOT EXISTS analyses"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}

func TestConnectRetriesPing(t *testing.T) {
	_, mock := useMockDB(t)

	mock.ExpectPing().WillReturnError(errRefused)
	mock.ExpectPing()

	opts := Options{ConnectRetries: 1, RetryDelay: time.Millisecond, PingTimeout: time.Second}
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestConnectGivesUpAfterRetries(t *testing.T) {
	_, mock := useMockDB(t)

	mock.ExpectPing().WillReturnError(errRefused)
	mock.ExpectPing().WillReturnError(errRefused)
	mock.ExpectClose()

	opts := Options{ConnectRetries: 1, RetryDelay: time.Millisecond}
	if _, err := Connect(context.Background(), "ignored", opts); !errors.Is(err, errRefused) {
		t.Fatalf("expected refusal after retries, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
