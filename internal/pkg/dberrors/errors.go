package dberrors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintName
}

// IsSQLiteUniqueViolation reports whether err is a SQLite UNIQUE constraint failure on column
// (given as "table.column").
func IsSQLiteUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	// Extended codes such as SQLITE_CONSTRAINT_UNIQUE keep the primary code in the low byte.
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff != sqlite3lib.SQLITE_CONSTRAINT {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, strings.ToLower(column))
}
