package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/flash"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

// Action names the write a failed request was attempting
type Action string

const (
	ActionSave   Action = "save"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// User-facing failure messages
const (
	MsgDuplicateIDNo    = "Student ID number already exists"
	MsgStudentNotFound  = "Student not found"
	MsgInvalidStudentID = "Invalid student ID"
	MsgStoreUnavailable = "Student records are temporarily unavailable"
	MsgSaveFailed       = "Error saving student information"
	MsgUpdateFailed     = "Error updating student"
	MsgDeleteFailed     = "Error deleting student"
)

// FlashMessageForError maps err onto the message shown to the user after action failed
func FlashMessageForError(err error, action Action) string {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		if msg := apperrors.UserMessage(err); msg != "" {
			return msg
		}
		return "Validation failed"
	case errors.Is(err, apperrors.ErrStudentIDAlreadyExists):
		return MsgDuplicateIDNo
	case errors.Is(err, apperrors.ErrInvalidStudentID):
		return MsgInvalidStudentID
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return MsgStudentNotFound
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return MsgStoreUnavailable
	}

	switch action {
	case ActionUpdate:
		return MsgUpdateFailed
	case ActionDelete:
		return MsgDeleteFailed
	default:
		return MsgSaveFailed
	}
}

// FlashForError queues the error message for err and records err on the context for the request log
func FlashForError(c *gin.Context, store *flash.Store, err error, action Action) {
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		logger.Error().Err(err).Str("action", string(action)).Msg("Student operation failed")
	}
	_ = c.Error(err)
	store.Error(c, FlashMessageForError(err, action))
}
