package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studentregistry/internal/app/models"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/helpers"
)

// StudentRepository persists student records in the single students table
type StudentRepository interface {
	// Initialize creates the students table if it does not exist. Safe to call on every start.
	Initialize(ctx context.Context) error
	// Create inserts a student and returns the store-assigned id
	Create(ctx context.Context, student *models.Student) (int64, error)
	// List returns every student in insertion order
	List(ctx context.Context) ([]*models.Student, error)
	// FindByFilter returns the students matching every set field of filter
	FindByFilter(ctx context.Context, filter StudentFilter) ([]*models.Student, error)
	// Update overwrites all mutable columns of the student with student.ID
	Update(ctx context.Context, student *models.Student) error
	// Delete removes the student with the given id
	Delete(ctx context.Context, id int64) error
	Close() error
}

// StudentFilter holds exact-match conditions; zero-valued fields are ignored and the rest are ANDed.
type StudentFilter struct {
	ID        int64
	IDNo      string
	LastName  string
	FirstName string
	Course    string
	Level     *int
}

// conditions maps the set fields onto their column names
func (f StudentFilter) conditions() squirrel.Eq {
	eq := squirrel.Eq{}
	if f.ID > 0 {
		eq["id"] = f.ID
	}
	if f.IDNo != "" {
		eq["idno"] = f.IDNo
	}
	if f.LastName != "" {
		eq["lastname"] = f.LastName
	}
	if f.FirstName != "" {
		eq["firstname"] = f.FirstName
	}
	if f.Course != "" {
		eq["course"] = f.Course
	}
	if f.Level != nil {
		eq["level"] = *f.Level
	}
	return eq
}

// selectStudents builds the filtered SELECT for the builder's placeholder format
func selectStudents(sb squirrel.StatementBuilderType, filter StudentFilter) (string, []interface{}, error) {
	query := sb.Select(studentColumns...).From("students").OrderBy("id ASC")
	if eq := filter.conditions(); len(eq) > 0 {
		query = query.Where(eq)
	}
	return query.ToSql()
}

var studentColumns = []string{"id", "idno", "lastname", "firstname", "course", "level", "photo"}

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	student := &models.Student{}
	var photo sql.NullString
	if err := row.Scan(&student.ID, &student.IDNo, &student.LastName, &student.FirstName,
		&student.Course, &student.Level, &photo); err != nil {
		return nil, err
	}
	student.Photo = helpers.StringOrDefault(photo, "")
	return student, nil
}

// unavailableStudentRepository stands in when the database could not be opened at startup
type unavailableStudentRepository struct {
	cause error
}

// NewUnavailableStudentRepository returns a repository whose every call fails with
// apperrors.ErrStoreUnavailable, letting the application keep serving without a database.
func NewUnavailableStudentRepository(cause error) StudentRepository {
	return &unavailableStudentRepository{cause: cause}
}

func (r *unavailableStudentRepository) err() error {
	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, r.cause)
}

func (r *unavailableStudentRepository) Initialize(context.Context) error { return r.err() }

func (r *unavailableStudentRepository) Create(context.Context, *models.Student) (int64, error) {
	return 0, r.err()
}

func (r *unavailableStudentRepository) List(context.Context) ([]*models.Student, error) {
	return nil, r.err()
}

func (r *unavailableStudentRepository) FindByFilter(context.Context, StudentFilter) ([]*models.Student, error) {
	return nil, r.err()
}

func (r *unavailableStudentRepository) Update(context.Context, *models.Student) error {
	return r.err()
}

func (r *unavailableStudentRepository) Delete(context.Context, int64) error { return r.err() }

func (r *unavailableStudentRepository) Close() error { return nil }
