package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yigit/studentregistry/internal/app/models/dto"
	"github.com/yigit/studentregistry/internal/app/services"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/flash"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

func TestFlashMessageForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		action Action
		want   string
	}{
		{"validation", apperrors.NewValidationError(services.MsgAllFieldsRequired), ActionSave, services.MsgAllFieldsRequired},
		{"duplicate idno", fmt.Errorf("create: %w", apperrors.ErrStudentIDAlreadyExists), ActionSave, MsgDuplicateIDNo},
		{"not found on update", apperrors.ErrStudentNotFound, ActionUpdate, MsgStudentNotFound},
		{"invalid id on delete", apperrors.ErrInvalidStudentID, ActionDelete, MsgInvalidStudentID},
		{"store unavailable", fmt.Errorf("%w: disk gone", apperrors.ErrStoreUnavailable), ActionDelete, MsgStoreUnavailable},
		{"other save", errors.New("boom"), ActionSave, MsgSaveFailed},
		{"other update", errors.New("boom"), ActionUpdate, MsgUpdateFailed},
		{"other delete", errors.New("boom"), ActionDelete, MsgDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlashMessageForError(tt.err, tt.action); got != tt.want {
				t.Fatalf("FlashMessageForError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBindingError(t *testing.T) {
	missingFields := binding.Validator.ValidateStruct(&dto.EditStudentForm{ID: 3})
	if got := apperrors.UserMessage(BindingError(missingFields)); got != services.MsgAllFieldsRequired {
		t.Fatalf("missing fields message = %q", got)
	}

	missingID := binding.Validator.ValidateStruct(&dto.EditStudentForm{
		StudentForm: dto.StudentForm{IDNo: "1", LastName: "a", FirstName: "b", Course: "c", Level: "1"},
	})
	if err := BindingError(missingID); !errors.Is(err, apperrors.ErrInvalidStudentID) {
		t.Fatalf("missing id error = %v", err)
	}

	badLevel := binding.Validator.ValidateStruct(&dto.StudentFilterQuery{Level: "three"})
	if got := apperrors.UserMessage(BindingError(badLevel)); got != services.MsgLevelNotInteger {
		t.Fatalf("bad level message = %q", got)
	}

	if got := apperrors.UserMessage(BindingError(errors.New("EOF"))); got != services.MsgAllFieldsRequired {
		t.Fatalf("parse failure message = %q", got)
	}
}

func TestFlashForErrorQueuesMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/savestudent", nil)
	store := flash.NewStore(flash.Config{SecretKey: "test-secret"})

	FlashForError(c, store, apperrors.ErrStudentIDAlreadyExists, ActionSave)

	messages := store.Pop(c)
	if len(messages) != 1 || messages[0].Category != flash.CategoryError || messages[0].Message != MsgDuplicateIDNo {
		t.Fatalf("flash = %v", messages)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("context errors = %v", c.Errors)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.Configure(logger.Config{Level: logger.InfoLevel, Output: &buf})
	t.Cleanup(func() {
		logger.Configure(logger.Config{Level: logger.InfoLevel, Pretty: true, Output: os.Stdout})
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?idno=1", nil))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log entry %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["path"] != "/missing" || entry["query"] != "idno=1" || entry["status"] != float64(404) {
		t.Fatalf("unexpected log entry %v", entry)
	}
}
