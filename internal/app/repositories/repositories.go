package repositories

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository StudentRepository
}

// NewSQLiteRepositories initializes all repositories on an embedded SQLite handle
func NewSQLiteRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		StudentRepository: NewSQLiteStudentRepository(db),
	}
}

// NewPostgresRepositories initializes all repositories on a PostgreSQL pool
func NewPostgresRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		StudentRepository: NewPostgresStudentRepository(db),
	}
}

// Close releases the underlying database handle
func (r *Repositories) Close() error {
	if r == nil || r.StudentRepository == nil {
		return nil
	}
	return r.StudentRepository.Close()
}
