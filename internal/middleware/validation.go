package middleware

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/studentregistry/internal/app/services"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
)

// BindingError turns a form binding failure into an application error. A missing or
// invalid record id is reported as an unknown student; anything else as missing fields.
func BindingError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidationError(services.MsgAllFieldsRequired)
	}

	for _, fe := range validationErrors {
		switch {
		case fe.Field() == "ID":
			return apperrors.ErrInvalidStudentID
		case fe.Field() == "Level" && fe.Tag() == "numeric":
			return apperrors.NewValidationError(services.MsgLevelNotInteger)
		}
	}
	return apperrors.NewValidationError(services.MsgAllFieldsRequired)
}
