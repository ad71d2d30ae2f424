package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentregistry/internal/app/models"
	"github.com/yigit/studentregistry/internal/app/models/dto"
	"github.com/yigit/studentregistry/internal/app/services"
	"github.com/yigit/studentregistry/internal/app/views"
	"github.com/yigit/studentregistry/internal/middleware"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/flash"
	"github.com/yigit/studentregistry/internal/pkg/logger"
	"github.com/yigit/studentregistry/internal/pkg/websocket"
)

// Success messages
const (
	MsgStudentSaved   = "Student information saved successfully"
	MsgStudentUpdated = "Student updated successfully"
	MsgStudentDeleted = "Student deleted successfully"
)

// StudentController serves the student list page and its form actions
type StudentController struct {
	studentService services.StudentService
	flash          *flash.Store
	events         *websocket.Hub
}

// NewStudentController creates a new StudentController. events may be nil.
func NewStudentController(studentService services.StudentService, flashStore *flash.Store, events *websocket.Hub) *StudentController {
	return &StudentController{
		studentService: studentService,
		flash:          flashStore,
		events:         events,
	}
}

// Index renders the student list, optionally narrowed by exact-match query parameters.
// A failing store renders an empty list with a warning instead of an error page.
func (c *StudentController) Index(ctx *gin.Context) {
	var query dto.StudentFilterQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		c.flash.Error(ctx, apperrors.UserMessage(middleware.BindingError(err)))
		query = dto.StudentFilterQuery{}
	}

	var (
		students []*models.Student
		err      error
	)
	filtered := !query.IsEmpty()
	if filtered {
		students, err = c.studentService.FindStudents(ctx.Request.Context(), query)
	} else {
		students, err = c.studentService.ListStudents(ctx.Request.Context())
	}

	if err != nil {
		students = []*models.Student{}
		switch {
		case errors.Is(err, apperrors.ErrValidationFailed):
			c.flash.Error(ctx, apperrors.UserMessage(err))
		default:
			logger.Error().Err(err).Msg("Failed to load students")
			c.flash.Warning(ctx, middleware.MsgStoreUnavailable)
		}
	}

	ctx.HTML(http.StatusOK, views.IndexTemplate, views.IndexPage{
		Students: students,
		Flashes:  c.flash.Pop(ctx),
		Filter:   query,
		Filtered: filtered,
	})
}

// Main redirects the legacy /main path to the list
func (c *StudentController) Main(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, "/")
}

// SaveStudent handles the add-student form
func (c *StudentController) SaveStudent(ctx *gin.Context) {
	defer ctx.Redirect(http.StatusSeeOther, "/")

	var form dto.StudentForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.FlashForError(ctx, c.flash, middleware.BindingError(err), middleware.ActionSave)
		return
	}

	outcome, err := c.studentService.CreateStudent(ctx.Request.Context(), form.ToInput(), uploadedPhoto(ctx))
	if err != nil {
		middleware.FlashForError(ctx, c.flash, err, middleware.ActionSave)
		return
	}
	c.flashOutcome(ctx, outcome, MsgStudentSaved)
	c.events.Publish(websocket.EventStudentCreated, outcome.Student.ID)
}

// EditStudent handles the edit-student form
func (c *StudentController) EditStudent(ctx *gin.Context) {
	defer ctx.Redirect(http.StatusSeeOther, "/")

	var form dto.EditStudentForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.FlashForError(ctx, c.flash, middleware.BindingError(err), middleware.ActionUpdate)
		return
	}

	outcome, err := c.studentService.UpdateStudent(ctx.Request.Context(), form.ID, form.ToInput(), form.OldPhoto, uploadedPhoto(ctx))
	if err != nil {
		middleware.FlashForError(ctx, c.flash, err, middleware.ActionUpdate)
		return
	}
	c.flashOutcome(ctx, outcome, MsgStudentUpdated)
	c.events.Publish(websocket.EventStudentUpdated, form.ID)
}

// DeleteStudent handles GET /deletestudent?id=<id>
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	defer ctx.Redirect(http.StatusFound, "/")

	var query dto.DeleteStudentQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.FlashForError(ctx, c.flash, apperrors.ErrInvalidStudentID, middleware.ActionDelete)
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), query.ID); err != nil {
		middleware.FlashForError(ctx, c.flash, err, middleware.ActionDelete)
		return
	}
	c.flash.Success(ctx, MsgStudentDeleted)
	c.events.Publish(websocket.EventStudentDeleted, query.ID)
}

// Ping is the liveness check
func (c *StudentController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.PingResponse{Message: "pong", Status: "ok"})
}

func (c *StudentController) flashOutcome(ctx *gin.Context, outcome *services.StudentOutcome, success string) {
	for _, warning := range outcome.Warnings {
		c.flash.Warning(ctx, warning)
	}
	c.flash.Success(ctx, success)
}

// uploadedPhoto returns the optional photo part, or nil when none was chosen
func uploadedPhoto(ctx *gin.Context) *multipart.FileHeader {
	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		// Plain url-encoded forms have no file parts at all
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			logger.Warn().Err(err).Msg("Could not read uploaded photo")
		}
		return nil
	}
	return fileHeader
}
