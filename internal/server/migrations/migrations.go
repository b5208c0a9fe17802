// Package migrations embeds the goose SQL migrations, one directory per
// database dialect, and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

// Migrations holds postgres/*.sql and sqlite/*.sql.
//
//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Goose dialect names and the matching directory inside Migrations.
const (
	DialectPostgres = "pgx"
	DialectSQLite   = "sqlite3"

	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

// goose keeps its configuration in package globals.
var mu sync.Mutex

// Up applies every pending migration of dialect to db.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	dir, err := dirFor(dialect)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}

func dirFor(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return PostgresDir, nil
	case DialectSQLite:
		return SQLiteDir, nil
	default:
		return "", fmt.Errorf("unknown migration dialect %q", dialect)
	}
}
