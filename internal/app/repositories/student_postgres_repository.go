package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentregistry/internal/app/models"
	"github.com/yigit/studentregistry/internal/app/schema"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/dberrors"
	"github.com/yigit/studentregistry/internal/pkg/helpers"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

const (
	pgInsertStudent = `
		INSERT INTO students (idno, lastname, firstname, course, level, photo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	pgListStudents = `
		SELECT id, idno, lastname, firstname, course, level, photo
		FROM students
		ORDER BY id ASC`
	pgUpdateStudent = `
		UPDATE students
		SET idno = $1, lastname = $2, firstname = $3, course = $4, level = $5, photo = $6
		WHERE id = $7`
	pgDeleteStudent = `DELETE FROM students WHERE id = $1`
)

// PostgresStudentRepository handles student database operations on PostgreSQL
type PostgresStudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostgresStudentRepository creates a new PostgresStudentRepository
func NewPostgresStudentRepository(db *pgxpool.Pool) *PostgresStudentRepository {
	return &PostgresStudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Initialize creates the students table if needed
func (r *PostgresStudentRepository) Initialize(ctx context.Context) error {
	if err := schema.InitializePool(ctx, r.db); err != nil {
		logger.Error().Err(err).Msg("Error initializing students table")
		return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Create inserts a new student
func (r *PostgresStudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, pgInsertStudent,
		student.IDNo, student.LastName, student.FirstName, student.Course, student.Level,
		helpers.GetContentNullString(student.Photo)).Scan(&id)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, schema.UniqueIDNoConstraint) {
			logger.Warn().Str("idno", student.IDNo).Msg("Attempted to create student with duplicate ID number")
			return 0, apperrors.ErrStudentIDAlreadyExists
		}
		logger.Error().Err(err).Str("idno", student.IDNo).Msg("Error executing create student query")
		return 0, fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Int64("id", id).Str("idno", student.IDNo).Msg("Student created successfully")
	return id, nil
}

// List retrieves all students
func (r *PostgresStudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	rows, err := r.db.Query(ctx, pgListStudents)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("%w: error querying students: %w", apperrors.ErrStoreUnavailable, err)
	}
	return collectPgRows(rows)
}

// FindByFilter retrieves the students matching filter
func (r *PostgresStudentRepository) FindByFilter(ctx context.Context, filter StudentFilter) ([]*models.Student, error) {
	query, args, err := selectStudents(r.sb, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error building find students SQL")
		return nil, fmt.Errorf("failed to build find students query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing find students query")
		return nil, fmt.Errorf("%w: error querying students: %w", apperrors.ErrStoreUnavailable, err)
	}
	return collectPgRows(rows)
}

// Update overwrites an existing student
func (r *PostgresStudentRepository) Update(ctx context.Context, student *models.Student) error {
	cmdTag, err := r.db.Exec(ctx, pgUpdateStudent,
		student.IDNo, student.LastName, student.FirstName, student.Course, student.Level,
		helpers.GetContentNullString(student.Photo), student.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, schema.UniqueIDNoConstraint) {
			return apperrors.ErrStudentIDAlreadyExists
		}
		logger.Error().Err(err).Int64("id", student.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student by ID
func (r *PostgresStudentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, pgDeleteStudent, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Close closes the connection pool
func (r *PostgresStudentRepository) Close() error {
	if r != nil && r.db != nil {
		r.db.Close()
	}
	return nil
}

func collectPgRows(rows pgx.Rows) ([]*models.Student, error) {
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student rows")
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

var _ StudentRepository = (*PostgresStudentRepository)(nil)
