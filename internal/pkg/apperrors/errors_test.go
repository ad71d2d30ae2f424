package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStudentErrorsUnwrapToCategories(t *testing.T) {
	wrapped := fmt.Errorf("update student 7: %w", ErrStudentNotFound)
	if !errors.Is(wrapped, ErrStudentNotFound) {
		t.Fatalf("expected wrapped error to match ErrStudentNotFound")
	}
	if !errors.Is(wrapped, ErrResourceNotFound) {
		t.Fatalf("expected ErrStudentNotFound to unwrap to ErrResourceNotFound")
	}
	if !errors.Is(ErrStudentIDAlreadyExists, ErrResourceAlreadyExists) {
		t.Fatalf("expected ErrStudentIDAlreadyExists to unwrap to ErrResourceAlreadyExists")
	}
}

func TestIsMatchesAnyListedError(t *testing.T) {
	err := fmt.Errorf("save: %w", ErrPhotoTooLarge)
	if !Is(err, ErrUnsupportedPhotoType, ErrPhotoUnreadable, ErrPhotoTooLarge) {
		t.Fatalf("Is() = false, want true")
	}
	if Is(err, ErrUnsupportedPhotoType, ErrPhotoUnreadable) {
		t.Fatalf("Is() = true, want false")
	}
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("create: %w", NewValidationError("All fields are required!"))
	if got := UserMessage(err); got != "All fields are required!" {
		t.Fatalf("UserMessage() = %q", got)
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation error category")
	}
	if got := UserMessage(errors.New("plain")); got != "" {
		t.Fatalf("UserMessage(plain) = %q, want empty", got)
	}
}
