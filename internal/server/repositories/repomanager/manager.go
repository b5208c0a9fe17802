// Package repomanager vends repository implementations for one database
// dialect, bound to either a *sql.DB or a transaction, and runs the schema
// migrations for that dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/conduit/internal/dbx"
	"github.com/dmitrijs2005/conduit/internal/server/config"
	"github.com/dmitrijs2005/conduit/internal/server/migrations"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/follows"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/todos"
	"github.com/dmitrijs2005/conduit/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Follows(db dbx.DBTX) follows.Repository
	Todos(db dbx.DBTX) todos.Repository
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

// Open connects to the database selected by driver ("pgx" or "sqlite"),
// verifies the connection and returns the matching RepositoryManager.
//
// SQLite databases get a busy timeout, enforced foreign keys and a single
// open connection, so concurrent transactions are serialised.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, RepositoryManager, error) {
	var m RepositoryManager

	switch driver {
	case config.DriverPostgres:
		m = NewPostgresRepositoryManager()
	case config.DriverSQLite:
		dsn = sqliteDSN(dsn)
		m = NewSQLiteRepositoryManager()
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	return db, m, nil
}

// sqliteDSN turns a plain file path into a DSN carrying the connection
// pragmas. DSNs that already have parameters are left alone.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + "?" + sqlitePragmas
}
