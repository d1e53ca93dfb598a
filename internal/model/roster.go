package model

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Student is a roster member. The admission number is the login name.
type Student struct {
	ID           int64     `db:"id" json:"id"`
	AdmissionNo  string    `db:"admission_no" json:"admission_no"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ClassID      *int64    `db:"class_id" json:"class_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentInput carries the fields of a create or full-replace update.
type StudentInput struct {
	AdmissionNo string `json:"admission_no" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required"`
	ClassID     *int64 `json:"class_id" validate:"omitempty,gt=0"`
}

// Class groups students. Membership lives on Student.ClassID.
type Class struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Period is a fixed daily slot shared by every class.
type Period struct {
	ID       int64  `db:"id" json:"id"`
	PeriodNo int    `db:"period_no" json:"period_no"`
	Label    string `db:"label" json:"label"`
}

// Teacher can log in and manage rosters and sheets.
type Teacher struct {
	ID           int64     `db:"id" json:"id"`
	EmpID        string    `db:"emp_id" json:"emp_id"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Validate checks required fields and lengths.
func (in *StudentInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return Invalidf("%s", describe(err))
	}
	return CheckPasswordLength("password", in.Password)
}

// CheckPasswordLength rejects passwords longer than bcrypt can hash. The
// limit is in bytes, not characters.
func CheckPasswordLength(field, password string) error {
	if len(password) > MaxPasswordBytes {
		return Invalidf("%s must be at most %d bytes", field, MaxPasswordBytes)
	}
	return nil
}
