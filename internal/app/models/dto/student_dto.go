package dto

import (
	"strings"
)

// StudentForm is the multipart form posted by the add-student dialog
type StudentForm struct {
	IDNo      string `form:"idno" binding:"required"`
	LastName  string `form:"lastname" binding:"required"`
	FirstName string `form:"firstname" binding:"required"`
	Course    string `form:"course" binding:"required"`
	Level     string `form:"level" binding:"required"`
}

// EditStudentForm is the multipart form posted by the edit-student dialog
type EditStudentForm struct {
	StudentForm
	ID       int64  `form:"id" binding:"required,gt=0"`
	OldPhoto string `form:"old_photo"`
}

// DeleteStudentQuery carries the id of the record to remove
type DeleteStudentQuery struct {
	ID int64 `form:"id" binding:"required,gt=0"`
}

// StudentFilterQuery narrows the list view to exact matches
type StudentFilterQuery struct {
	IDNo      string `form:"idno"`
	LastName  string `form:"lastname"`
	FirstName string `form:"firstname"`
	Course    string `form:"course"`
	Level     string `form:"level" binding:"omitempty,numeric"`
}

// StudentInput is the trimmed, not yet validated set of core fields
type StudentInput struct {
	IDNo      string
	LastName  string
	FirstName string
	Course    string
	Level     string
}

// ToInput trims every field of the form
func (f StudentForm) ToInput() StudentInput {
	return StudentInput{
		IDNo:      strings.TrimSpace(f.IDNo),
		LastName:  strings.TrimSpace(f.LastName),
		FirstName: strings.TrimSpace(f.FirstName),
		Course:    strings.TrimSpace(f.Course),
		Level:     strings.TrimSpace(f.Level),
	}
}

// IsEmpty reports whether no filter field was supplied
func (q StudentFilterQuery) IsEmpty() bool {
	return strings.TrimSpace(q.IDNo) == "" &&
		strings.TrimSpace(q.LastName) == "" &&
		strings.TrimSpace(q.FirstName) == "" &&
		strings.TrimSpace(q.Course) == "" &&
		strings.TrimSpace(q.Level) == ""
}
