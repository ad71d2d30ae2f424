package models

// Student defines the student model based on the 'students' table
type Student struct {
	// ID is assigned by the store and never reused after deletion
	ID int64 `json:"id" db:"id" example:"1"`
	// IDNo is the externally supplied student number, unique across records
	IDNo      string `json:"idno" db:"idno" example:"2021-001"`
	LastName  string `json:"lastname" db:"lastname" example:"Cruz"`
	FirstName string `json:"firstname" db:"firstname" example:"Ana"`
	Course    string `json:"course" db:"course" example:"BSIT"`
	Level     int    `json:"level" db:"level" example:"3"`
	// Photo is a path relative to the static directory or an absolute URL
	Photo string `json:"photo" db:"photo" example:"uploads/3f1c.png"`
}

// FullName returns "Lastname, Firstname" as shown in the registry list
func (s *Student) FullName() string {
	return s.LastName + ", " + s.FirstName
}
