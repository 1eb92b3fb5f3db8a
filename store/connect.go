// store/connect.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// PoolConfig sizes the connection pool for the networked backends.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig suits a single service instance talking to MySQL or
// Postgres.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

func (p PoolConfig) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
	db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
}

// Open connects to driver/dsn and verifies the connection within ctx.
// For sqlite the dsn is a file path or ":memory:".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch d {
	case SQLite:
		db, err = openSQLite(dsn)
	case MySQL:
		db, err = openMySQL(dsn)
	case Postgres:
		db, err = openPostgres(dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	if d == SQLite {
		if err := applyPragmas(ctx, db, dsn); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return New(db, d), nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory") || strings.HasPrefix(path, "file::memory:")
}

// openSQLite uses a single connection: SQLite serializes writers anyway,
// and an in-memory database only lives as long as its one connection.
func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		path = "eventdesk.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+"_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, path string) error {
	pragmas := []string{"PRAGMA synchronous=NORMAL", "PRAGMA cache_size=-64000"}
	if !isMemory(path) {
		pragmas = append([]string{"PRAGMA journal_mode=WAL"}, pragmas...)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("sqlite %s: %w", p, err)
		}
	}
	return nil
}

// openMySQL forces parseTime so DATETIME columns scan into time.Time, and
// clientFoundRows so an UPDATE to the current value still counts its row.
func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	DefaultPoolConfig().apply(db)
	return db, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDB(*cfg)
	DefaultPoolConfig().apply(db)
	return db, nil
}
