package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// ErrStoreUnavailable means the record store could not be reached, as opposed to holding no rows.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// Student Errors
var (
	ErrStudentNotFound        = NewCustomError(ErrResourceNotFound, "student not found")
	ErrStudentIDAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "student ID number already exists")
	ErrInvalidStudentID       = NewCustomError(ErrBadRequest, "invalid student ID")
)

// Photo Errors
var (
	ErrUnsupportedPhotoType = errors.New("unsupported photo type")
	ErrPhotoTooLarge        = errors.New("photo exceeds the upload size limit")
	ErrPhotoUnreadable      = errors.New("photo could not be decoded")
)

// NewValidationError creates a validation failure carrying a user-facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// UserMessage returns the message of the first CustomError in err's chain, or "".
func UserMessage(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return ""
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
