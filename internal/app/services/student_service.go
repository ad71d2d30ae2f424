package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/yigit/studentregistry/internal/app/models"
	"github.com/yigit/studentregistry/internal/app/models/dto"
	"github.com/yigit/studentregistry/internal/app/repositories"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/filestorage"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

// User-facing validation messages
const (
	MsgAllFieldsRequired = "All fields are required!"
	MsgLevelNotInteger   = "Level must be a whole number"
	MsgLevelOutOfRange   = "Level must be between 1 and 1000"
)

// StudentService defines the interface for student-related operations
type StudentService interface {
	ListStudents(ctx context.Context) ([]*models.Student, error)
	FindStudents(ctx context.Context, query dto.StudentFilterQuery) ([]*models.Student, error)
	CreateStudent(ctx context.Context, input dto.StudentInput, photo *multipart.FileHeader) (*StudentOutcome, error)
	UpdateStudent(ctx context.Context, id int64, input dto.StudentInput, oldPhoto string, photo *multipart.FileHeader) (*StudentOutcome, error)
	DeleteStudent(ctx context.Context, id int64) error
}

// StudentOutcome is a successful write plus any non-fatal photo warnings
type StudentOutcome struct {
	Student  *models.Student
	Warnings []string
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	studentRepo repositories.StudentRepository
	photoStore  filestorage.PhotoStore
	placeholder string
}

// NewStudentService creates a new student service instance.
// placeholder is the photo reference used for students without an uploaded photo.
func NewStudentService(studentRepo repositories.StudentRepository, photoStore filestorage.PhotoStore, placeholder string) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		photoStore:  photoStore,
		placeholder: placeholder,
	}
}

// ListStudents returns every student in insertion order
func (s *studentServiceImpl) ListStudents(ctx context.Context) ([]*models.Student, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withPlaceholders(students), nil
}

// FindStudents returns the students matching every supplied query field
func (s *studentServiceImpl) FindStudents(ctx context.Context, query dto.StudentFilterQuery) ([]*models.Student, error) {
	filter := repositories.StudentFilter{
		IDNo:      strings.TrimSpace(query.IDNo),
		LastName:  strings.TrimSpace(query.LastName),
		FirstName: strings.TrimSpace(query.FirstName),
		Course:    strings.TrimSpace(query.Course),
	}
	if level := strings.TrimSpace(query.Level); level != "" {
		n, err := parseLevel(level)
		if err != nil {
			return nil, err
		}
		filter.Level = &n
	}

	students, err := s.studentRepo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withPlaceholders(students), nil
}

// CreateStudent validates input, stores the optional photo and inserts the record
func (s *studentServiceImpl) CreateStudent(ctx context.Context, input dto.StudentInput, photo *multipart.FileHeader) (*StudentOutcome, error) {
	level, err := validateStudentInput(input)
	if err != nil {
		return nil, err
	}

	ref, warning, stored := s.resolvePhoto(ctx, photo, s.placeholder, "default photo used")
	student := &models.Student{
		IDNo:      input.IDNo,
		LastName:  input.LastName,
		FirstName: input.FirstName,
		Course:    input.Course,
		Level:     level,
		Photo:     ref,
	}

	id, err := s.studentRepo.Create(ctx, student)
	if err != nil {
		if stored {
			s.discardPhoto(ctx, ref)
		}
		return nil, err
	}
	student.ID = id

	return newOutcome(student, warning), nil
}

// UpdateStudent overwrites every field of the student with id. Without a new upload the
// current photo is kept; a replaced uploaded photo is removed from the photo store.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, input dto.StudentInput, oldPhoto string, photo *multipart.FileHeader) (*StudentOutcome, error) {
	if id <= 0 {
		return nil, apperrors.ErrInvalidStudentID
	}
	level, err := validateStudentInput(input)
	if err != nil {
		return nil, err
	}

	current, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := current.Photo
	if previous == "" {
		previous = strings.TrimSpace(oldPhoto)
	}
	if previous == "" {
		previous = s.placeholder
	}

	ref, warning, stored := s.resolvePhoto(ctx, photo, previous, "current photo kept")
	student := &models.Student{
		ID:        id,
		IDNo:      input.IDNo,
		LastName:  input.LastName,
		FirstName: input.FirstName,
		Course:    input.Course,
		Level:     level,
		Photo:     ref,
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if stored {
			s.discardPhoto(ctx, ref)
		}
		return nil, err
	}

	if stored && previous != ref && previous != s.placeholder {
		s.discardPhoto(ctx, previous)
	}
	return newOutcome(student, warning), nil
}

// DeleteStudent removes the student with id and then its uploaded photo
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.ErrInvalidStudentID
	}

	current, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if current.Photo != "" && current.Photo != s.placeholder {
		s.discardPhoto(ctx, current.Photo)
	}
	return nil
}

func (s *studentServiceImpl) findByID(ctx context.Context, id int64) (*models.Student, error) {
	students, err := s.studentRepo.FindByFilter(ctx, repositories.StudentFilter{ID: id})
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return students[0], nil
}

// resolvePhoto stores photo when one was uploaded. Any failure falls back to fallback and
// yields a warning for the user instead of an error.
func (s *studentServiceImpl) resolvePhoto(ctx context.Context, photo *multipart.FileHeader, fallback, fallbackNote string) (ref, warning string, stored bool) {
	if photo == nil || photo.Filename == "" {
		return fallback, "", false
	}

	ref, err := s.photoStore.Save(ctx, photo)
	if err == nil && ref != "" {
		return ref, "", true
	}

	logger.Warn().Err(err).Str("filename", photo.Filename).Msg("Photo not stored, falling back")
	return fallback, photoWarning(err) + ", " + fallbackNote, false
}

func (s *studentServiceImpl) discardPhoto(ctx context.Context, ref string) {
	if err := s.photoStore.Delete(ctx, ref); err != nil {
		logger.Warn().Err(err).Str("photo", ref).Msg("Failed to remove photo")
	}
}

func (s *studentServiceImpl) withPlaceholders(students []*models.Student) []*models.Student {
	for _, student := range students {
		if student.Photo == "" {
			student.Photo = s.placeholder
		}
	}
	return students
}

// validateStudentInput checks the trimmed core fields and parses the level
func validateStudentInput(input dto.StudentInput) (int, error) {
	if input.IDNo == "" || input.LastName == "" || input.FirstName == "" ||
		input.Course == "" || input.Level == "" {
		return 0, apperrors.NewValidationError(MsgAllFieldsRequired)
	}

	return parseLevel(input.Level)
}

// Year levels accepted on input; the bound also keeps values inside a 32-bit INTEGER column
const (
	minLevel = 1
	maxLevel = 1000
)

func parseLevel(value string) (int, error) {
	level, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperrors.NewValidationError(MsgLevelNotInteger), value)
	}
	if level < minLevel || level > maxLevel {
		return 0, fmt.Errorf("%w: %d", apperrors.NewValidationError(MsgLevelOutOfRange), level)
	}
	return level, nil
}

func photoWarning(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrUnsupportedPhotoType):
		return "Photo type not allowed"
	case errors.Is(err, apperrors.ErrPhotoTooLarge):
		return "Photo is too large"
	case errors.Is(err, apperrors.ErrPhotoUnreadable):
		return "Photo could not be read"
	default:
		return "Photo could not be saved"
	}
}

func newOutcome(student *models.Student, warning string) *StudentOutcome {
	outcome := &StudentOutcome{Student: student}
	if warning != "" {
		outcome.Warnings = append(outcome.Warnings, warning)
	}
	return outcome
}
