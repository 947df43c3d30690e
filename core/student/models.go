package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/reportube/reportube/core"
)

type Student struct {
	ID              string      `json:"id" db:"id"`
	AdmissionNumber string      `json:"admission_number" db:"admission_number"`
	FirstName       string      `json:"first_name" db:"first_name"`
	LastName        string      `json:"last_name" db:"last_name"`
	MiddleName      null.String `json:"middle_name" db:"middle_name"`
	DateOfBirth     null.Time   `json:"date_of_birth" db:"date_of_birth"`
	Gender          string      `json:"gender" db:"gender"`
	ClassID         null.String `json:"class_id" db:"class_id"`
	ParentName      string      `json:"parent_name" db:"parent_name"`
	ParentEmail     string      `json:"parent_email" db:"parent_email"`
	ParentPhone     string      `json:"parent_phone" db:"parent_phone"`
	IsActive        bool        `json:"is_active" db:"is_active"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"` // UTC

	// joined reference data, populated on reads only
	ClassName string `json:"class_name,omitempty" db:"class_name"`
	Level     string `json:"level,omitempty" db:"class_level"`
}

// FullName joins first, middle and last names, skipping an absent middle name.
func (s Student) FullName() string {
	parts := []string{s.FirstName}
	if s.MiddleName.Valid && s.MiddleName.String != "" {
		parts = append(parts, s.MiddleName.String)
	}
	parts = append(parts, s.LastName)
	return strings.Join(parts, " ")
}

type Class struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Level        string      `json:"level" db:"level"`
	AcademicYear string      `json:"academic_year" db:"academic_year"`
	TeacherID    null.String `json:"teacher_id" db:"teacher_id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

type Subject struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewStudent contains information needed to enrol a student.
type NewStudent struct {
	AdmissionNumber string `json:"admission_number" validate:"required"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	MiddleName      string `json:"middle_name"`
	DateOfBirth     string `json:"date_of_birth"` // YYYY-MM-DD
	Gender          string `json:"gender" validate:"omitempty,oneof=Male Female"`
	ClassID         string `json:"class_id"`
	ParentName      string `json:"parent_name"`
	ParentEmail     string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone     string `json:"parent_phone"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.AdmissionNumber = core.CleanString(ns.AdmissionNumber)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.MiddleName = core.CleanString(ns.MiddleName)
	ns.ParentEmail = core.CleanString(ns.ParentEmail, true /* lower */)
	return validate.Struct(ns)
}

// NewClass contains information needed to create a class.
type NewClass struct {
	Name         string `json:"name" validate:"required"`
	Level        string `json:"level"`
	AcademicYear string `json:"academic_year" validate:"required"`
	TeacherID    string `json:"teacher_id"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Level = core.CleanString(nc.Level)
	return validate.Struct(nc)
}

// NewSubject contains information needed to register a subject.
type NewSubject struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required,alphanum"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	return validate.Struct(ns)
}
