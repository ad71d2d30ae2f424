// Package schema holds the students table DDL for each supported dialect.
package schema

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var files embed.FS

// Dialect selects which DDL file applies
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// UniqueIDNoConstraint is the PostgreSQL name of the idno uniqueness constraint
const UniqueIDNoConstraint = "students_idno_key"

// DDL returns the CREATE TABLE IF NOT EXISTS statement for the dialect
func DDL(dialect Dialect) (string, error) {
	content, err := files.ReadFile("sql/" + string(dialect) + ".sql")
	if err != nil {
		return "", fmt.Errorf("read %s schema: %w", dialect, err)
	}
	return string(content), nil
}

// InitializeSQL creates the students table on a database/sql handle if it does not exist
func InitializeSQL(ctx context.Context, db *sql.DB, dialect Dialect) error {
	ddl, err := DDL(dialect)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create students table: %w", err)
	}
	return nil
}

// InitializePool creates the students table through a pgx pool if it does not exist
func InitializePool(ctx context.Context, pool *pgxpool.Pool) error {
	ddl, err := DDL(Postgres)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create students table: %w", err)
	}
	return nil
}
