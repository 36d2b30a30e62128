package db

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hadith-similarity-search/pkg/schema/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var (
	pgDB   *sqlx.DB
	pgOnce sync.Once
	pgMu   sync.RWMutex
)

// requiredTables are read by the repositories
var requiredTables = []string{"hadiths", "sources"}

// InitPostgres opens the process-wide pool from POSTGRES_URI
func InitPostgres(ctx context.Context) error {
	var initErr error
	pgOnce.Do(func() {
		cfg := config.GetConfig()
		if cfg.PostgresURI == "" {
			initErr = fmt.Errorf("POSTGRES_URI is required")
			return
		}

		conn, err := Open(ctx, cfg)
		if err != nil {
			initErr = err
			return
		}

		pgMu.Lock()
		pgDB = conn
		pgMu.Unlock()
	})
	return initErr
}

// Open connects with the pool settings from cfg and checks that the hadith
// schema is present
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}

	conn.SetMaxOpenConns(cfg.PostgresMaxConns)
	conn.SetMaxIdleConns(cfg.PostgresMaxConns)
	conn.SetConnMaxLifetime(cfg.PostgresConnMaxLife)
	conn.SetConnMaxIdleTime(time.Minute)

	if err := CheckSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// CheckSchema verifies the vector extension and the hadith tables exist
func CheckSchema(ctx context.Context, conn *sqlx.DB) error {
	var hasVector bool
	if err := conn.GetContext(ctx, &hasVector,
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`); err != nil {
		return fmt.Errorf("check vector extension: %w", err)
	}
	if !hasVector {
		return fmt.Errorf("the vector extension is not installed")
	}

	query, args, err := sqlx.In(
		`SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name IN (?)`,
		requiredTables)
	if err != nil {
		return fmt.Errorf("build table check: %w", err)
	}
	var found []string
	if err := conn.SelectContext(ctx, &found, conn.Rebind(query), args...); err != nil {
		return fmt.Errorf("check hadith tables: %w", err)
	}

	present := make(map[string]bool, len(found))
	for _, name := range found {
		present[name] = true
	}
	var missing []string
	for _, name := range requiredTables {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetPostgres returns the process-wide pool, or nil before InitPostgres
func GetPostgres() *sqlx.DB {
	pgMu.RLock()
	defer pgMu.RUnlock()
	return pgDB
}

// ClosePostgres closes the process-wide pool
func ClosePostgres() error {
	pgMu.Lock()
	defer pgMu.Unlock()
	if pgDB == nil {
		return nil
	}
	err := pgDB.Close()
	pgDB = nil
	return err
}
