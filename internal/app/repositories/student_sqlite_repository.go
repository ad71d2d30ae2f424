package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studentregistry/internal/app/models"
	"github.com/yigit/studentregistry/internal/app/schema"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/dberrors"
	"github.com/yigit/studentregistry/internal/pkg/helpers"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

const (
	sqliteInsertStudent = `
		INSERT INTO students (idno, lastname, firstname, course, level, photo)
		VALUES (?, ?, ?, ?, ?, ?)`
	sqliteListStudents = `
		SELECT id, idno, lastname, firstname, course, level, photo
		FROM students
		ORDER BY id ASC`
	sqliteUpdateStudent = `
		UPDATE students
		SET idno = ?, lastname = ?, firstname = ?, course = ?, level = ?, photo = ?
		WHERE id = ?`
	sqliteDeleteStudent = `DELETE FROM students WHERE id = ?`
)

// SQLiteStudentRepository handles student database operations on an embedded SQLite file
type SQLiteStudentRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewSQLiteStudentRepository creates a new SQLiteStudentRepository
func NewSQLiteStudentRepository(db *sql.DB) *SQLiteStudentRepository {
	return &SQLiteStudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Initialize creates the students table if needed
func (r *SQLiteStudentRepository) Initialize(ctx context.Context) error {
	if err := schema.InitializeSQL(ctx, r.db, schema.SQLite); err != nil {
		logger.Error().Err(err).Msg("Error initializing students table")
		return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Create inserts a new student
func (r *SQLiteStudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	res, err := r.db.ExecContext(ctx, sqliteInsertStudent,
		student.IDNo, student.LastName, student.FirstName, student.Course, student.Level,
		helpers.GetContentNullString(student.Photo))
	if err != nil {
		if dberrors.IsSQLiteUniqueViolation(err, "students.idno") {
			logger.Warn().Str("idno", student.IDNo).Msg("Attempted to create student with duplicate ID number")
			return 0, apperrors.ErrStudentIDAlreadyExists
		}
		logger.Error().Err(err).Str("idno", student.IDNo).Msg("Error executing create student query")
		return 0, fmt.Errorf("error creating student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading new student id: %w", err)
	}

	logger.Info().Int64("id", id).Str("idno", student.IDNo).Msg("Student created successfully")
	return id, nil
}

// List retrieves all students
func (r *SQLiteStudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	rows, err := r.db.QueryContext(ctx, sqliteListStudents)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("%w: error querying students: %w", apperrors.ErrStoreUnavailable, err)
	}
	return collectSQLRows(rows)
}

// FindByFilter retrieves the students matching filter
func (r *SQLiteStudentRepository) FindByFilter(ctx context.Context, filter StudentFilter) ([]*models.Student, error) {
	query, args, err := selectStudents(r.sb, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error building find students SQL")
		return nil, fmt.Errorf("failed to build find students query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing find students query")
		return nil, fmt.Errorf("%w: error querying students: %w", apperrors.ErrStoreUnavailable, err)
	}
	return collectSQLRows(rows)
}

// Update overwrites an existing student
func (r *SQLiteStudentRepository) Update(ctx context.Context, student *models.Student) error {
	res, err := r.db.ExecContext(ctx, sqliteUpdateStudent,
		student.IDNo, student.LastName, student.FirstName, student.Course, student.Level,
		helpers.GetContentNullString(student.Photo), student.ID)
	if err != nil {
		if dberrors.IsSQLiteUniqueViolation(err, "students.idno") {
			return apperrors.ErrStudentIDAlreadyExists
		}
		logger.Error().Err(err).Int64("id", student.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student by ID
func (r *SQLiteStudentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, sqliteDeleteStudent, id)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Close closes the SQLite handle
func (r *SQLiteStudentRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func collectSQLRows(rows *sql.Rows) ([]*models.Student, error) {
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

var _ StudentRepository = (*SQLiteStudentRepository)(nil)
