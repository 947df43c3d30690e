package score

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/reportube/reportube/core"
	"github.com/reportube/reportube/core/grade"
)

// Score is one subject result for a student in an academic period.
// A student has at most one Score per (subject, academic year, term);
// re-entering the pair replaces it and voids any prior approval.
//
// TotalScore and Grade are never persisted: they are recomputed from the
// CA/exam pair on every read, so they can never go stale.
type Score struct {
	ID           string      `json:"id" db:"id"`
	StudentID    string      `json:"student_id" db:"student_id"`
	SubjectID    string      `json:"subject_id" db:"subject_id"`
	ClassID      string      `json:"class_id" db:"class_id"`
	TeacherID    null.String `json:"teacher_id" db:"teacher_id"`
	AcademicYear string      `json:"academic_year" db:"academic_year"`
	Term         string      `json:"term" db:"term"`
	CAScore      float64     `json:"ca_score" db:"ca_score"`
	ExamScore    float64     `json:"exam_score" db:"exam_score"`
	Remark       null.String `json:"remark" db:"remark"`

	// derived via the grade engine; see Derive
	TotalScore float64     `json:"total_score" db:"-"`
	Grade      grade.Grade `json:"grade" db:"-"`

	IsApproved bool        `json:"is_approved" db:"is_approved"`
	ApprovedBy null.String `json:"approved_by" db:"approved_by"`
	ApprovedAt null.Time   `json:"approved_at" db:"approved_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC

	// joined reference data, populated on reads only
	SubjectName     string `json:"subject_name,omitempty" db:"subject_name"`
	SubjectCode     string `json:"subject_code,omitempty" db:"subject_code"`
	StudentName     string `json:"student_name,omitempty" db:"student_name"`
	AdmissionNumber string `json:"admission_number,omitempty" db:"admission_number"`
}

// Derive recomputes the total and grade from the CA/exam pair.
func (s *Score) Derive() {
	s.TotalScore = grade.Round2(s.CAScore + s.ExamScore)
	s.Grade = grade.GradeOf(s.TotalScore)
}

// GradeRemark returns the descriptive remark for the derived grade.
func (s Score) GradeRemark() string {
	return s.Grade.Remark()
}

// NewScore contains information needed to enter (or re-enter) a subject score.
// CA and exam are always supplied together.
type NewScore struct {
	StudentID    string  `json:"student_id" validate:"required"`
	SubjectID    string  `json:"subject_id" validate:"required"`
	ClassID      string  `json:"class_id" validate:"required"`
	TeacherID    string  `json:"teacher_id"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	Term         string  `json:"term" validate:"required"`
	CAScore      float64 `json:"ca_score"`
	ExamScore    float64 `json:"exam_score"`
	Remark       string  `json:"remark"`
}

func (ns *NewScore) Validate(validate *validator.Validate) error {
	ns.Remark = core.CleanString(ns.Remark)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return validatePair(ns.CAScore, ns.ExamScore)
}

// UpdateScore defines what fields may be modified on an existing Score.
// Nil fields are left untouched; supplying either score component re-validates
// the resulting pair. Any change voids prior approval.
type UpdateScore struct {
	CAScore   *float64 `json:"ca_score"`
	ExamScore *float64 `json:"exam_score"`
	Remark    *string  `json:"remark"`
}

func (us *UpdateScore) IsEmpty() bool {
	return us.CAScore == nil && us.ExamScore == nil && us.Remark == nil
}

// Validate checks the score pair that would result from applying the update to orig.
func (us *UpdateScore) Validate(orig Score) error {
	ca, exam := orig.CAScore, orig.ExamScore
	if us.CAScore != nil {
		ca = *us.CAScore
	}
	if us.ExamScore != nil {
		exam = *us.ExamScore
	}
	return validatePair(ca, exam)
}

// Apply copies the supplied fields onto s.
func (us *UpdateScore) Apply(s *Score) {
	if us.CAScore != nil {
		s.CAScore = *us.CAScore
	}
	if us.ExamScore != nil {
		s.ExamScore = *us.ExamScore
	}
	if us.Remark != nil {
		s.Remark = null.NewString(*us.Remark, *us.Remark != "")
	}
}

// validatePair maps grade.ValidateScorePair violations onto a core.ValidationError,
// preserving the CA-then-exam message order.
func validatePair(ca, exam float64) error {
	res := grade.ValidateScorePair(ca, exam)
	if res.Valid {
		return nil
	}

	flds := make([]core.FieldError, 0, len(res.Errors))
	i := 0
	if ca < 0 || ca > grade.MaxCAScore {
		flds = append(flds, core.FieldError{Field: "ca_score", Error: res.Errors[i]})
		i++
	}
	if exam < 0 || exam > grade.MaxExamScore {
		flds = append(flds, core.FieldError{Field: "exam_score", Error: res.Errors[i]})
	}
	return core.NewValidationError(errors.New("score out of range"), flds...)
}

// EntryResult reports the outcome for one row of a bulk score entry.
type EntryResult struct {
	StudentID string   `json:"student_id"`
	Success   bool     `json:"success"`
	Errors    []string `json:"errors,omitempty"`
}
