// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package storage persists the engine's state in DuckDB and implements the
// provider interfaces the computation packages consume. Structured documents
// (profiles, discovery records, playlist entries) are stored as JSON columns;
// everything queried by predicate gets ordinary columns and indexes.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
)

// Config holds DuckDB connection settings.
type Config struct {
	// Path is the database file. Empty opens an in-memory database, which
	// is what the tests use.
	Path string `json:"path" koanf:"path"`

	// MaxMemory caps DuckDB's memory use, e.g. "512MB".
	MaxMemory string `json:"max_memory" koanf:"max_memory"`

	// Threads is the DuckDB worker thread count. Zero or negative means
	// one per CPU.
	Threads int `json:"threads" koanf:"threads"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:      "data/bobjido.db",
		MaxMemory: "512MB",
		Threads:   0,
	}
}

// Store wraps the DuckDB connection and provides data access methods.
type Store struct {
	conn *sql.DB
	cfg  Config
}

// Open creates the database connection and initializes the schema.
func Open(cfg Config) (*Store, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = DefaultConfig().MaxMemory
	}

	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dbDir, err)
			}
		}
	}

	// Disable extension auto-install to avoid hangs in restricted network
	// environments; nothing in the schema needs extensions.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{conn: conn, cfg: cfg}
	s.configureConnectionPool()

	if err := s.Ping(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := s.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	logging.Info().Str("path", displayPath(cfg.Path)).Msg("Database opened")
	return s, nil
}

func (s *Store) configureConnectionPool() {
	// DuckDB is embedded; connections are cheap but share one process.
	s.conn.SetMaxOpenConns(runtime.NumCPU())
	s.conn.SetMaxIdleConns(2)
	s.conn.SetConnMaxLifetime(time.Hour)
	s.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.conn.PingContext(pingCtx)
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// observe records one query against the DB metrics.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// closeQuietly closes a resource in an error path where Close errors are
// not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

func displayPath(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}
