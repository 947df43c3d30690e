// Package grade implements the grading scheme used on report cards:
// a continuous-assessment score out of 40 plus an exam score out of 60,
// mapped onto seven letter bands. Everything in here is a pure function
// of its inputs.
package grade

import "fmt"

// Score bounds.
const (
	MaxCAScore   = 40
	MaxExamScore = 60

	// PassMark is the minimum total considered a pass.
	PassMark = 40
)

// Grade is one of the seven letter bands.
type Grade string

const (
	APlus Grade = "A+"
	A     Grade = "A"
	B     Grade = "B"
	C     Grade = "C"
	D     Grade = "D"
	E     Grade = "E"
	F     Grade = "F"
)

var remarks = map[Grade]string{
	APlus: "Outstanding",
	A:     "Excellent",
	B:     "Very Good",
	C:     "Good",
	D:     "Fair",
	E:     "Pass",
	F:     "Fail",
}

// GradeOf maps a total score to its letter band. Band lower bounds are inclusive.
func GradeOf(total float64) Grade {
	switch {
	case total >= 90:
		return APlus
	case total >= 80:
		return A
	case total >= 70:
		return B
	case total >= 60:
		return C
	case total >= 50:
		return D
	case total >= PassMark:
		return E
	default:
		return F
	}
}

// Remark returns the descriptive remark for the grade; "N/A" for anything unmapped.
func (g Grade) Remark() string {
	if r, ok := remarks[g]; ok {
		return r
	}
	return "N/A"
}

// PerformanceComment returns the teacher's-comment line for a total score.
func PerformanceComment(total float64) string {
	switch {
	case total >= 90:
		return "Exceptional performance! Keep up the excellent work."
	case total >= 80:
		return "Excellent work! Continue to maintain this standard."
	case total >= 70:
		return "Very good performance. Keep working hard."
	case total >= 60:
		return "Good effort. There is room for improvement."
	case total >= 50:
		return "Fair performance. More effort is needed."
	case total >= PassMark:
		return "Pass mark achieved. Significant improvement required."
	default:
		return "Fail. Student needs serious intervention and support."
	}
}

// GradingKey is the legend printed in every report footer.
func GradingKey() string {
	return "Grading Key: A+ (90-100) | A (80-89) | B (70-79) | C (60-69) | D (50-59) | E (40-49) | F (0-39)"
}

// ValidationResult reports score-pair violations; it is a value, never an error.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateScorePair checks the CA and exam components against their bounds.
// When both are out of range, both messages are reported, CA first.
func ValidateScorePair(ca, exam float64) ValidationResult {
	var errs []string
	if ca < 0 || ca > MaxCAScore {
		errs = append(errs, fmt.Sprintf("CA score must be between 0 and %d", MaxCAScore))
	}
	if exam < 0 || exam > MaxExamScore {
		errs = append(errs, fmt.Sprintf("Exam score must be between 0 and %d", MaxExamScore))
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
