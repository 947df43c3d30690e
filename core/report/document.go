// Package report builds report-card documents from a student's scores.
// BuildDocument produces a pure layout description; serializing it to an
// actual PDF (and emailing it) is left to the renderer and email services.
package report

import (
	"fmt"
	"time"

	"github.com/reportube/reportube/core/grade"
	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
)

// Page geometry, in points. A4 with ~50pt margins; the pdfkit layout the
// school's old report template used, kept so the output matches.
const (
	PageWidth     = 595.0
	Margin        = 50.0
	ContentWidth  = 495.0
	GridRowHeight = 25.0
	InfoRowOffset = 15.0
	SummaryHeight = 100.0
)

// Grid column x positions.
const (
	ColSubject = 50.0
	ColCA      = 260.0
	ColExam    = 330.0
	ColTotal   = 400.0
	ColGrade   = 470.0
	ColRemark  = 520.0
)

type (
	// Document is a renderable description of one report card. It is built
	// fresh per request and never persisted.
	Document struct {
		Header  Header
		Info    InfoBlock
		Grid    Grid
		Summary SummaryBox
		Footer  Footer
	}

	// Header is centered at the top of the page.
	Header struct {
		Institution string
		Subtitle    string
		PeriodLine  string
	}

	Field struct {
		Label string
		Value string
	}

	// InfoBlock is a two-column key/value layout with fixed row offsets:
	// name and admission number on the left, class and gender on the right.
	InfoBlock struct {
		Title string
		Left  []Field
		Right []Field
	}

	// GridRow is one subject line. Values are pre-formatted for display.
	GridRow struct {
		Subject string
		CA      string
		Exam    string
		Total   string
		Grade   string
		Remark  string
		Shaded  bool // alternating row shading by parity
	}

	// Grid is the tabular score section: a header row plus one row per
	// subject in input order. Zero rows renders the header only.
	Grid struct {
		Title     string
		HeaderRow GridRow
		Rows      []GridRow
	}

	// SummaryBox is a fixed-size box; overlong text is clipped or wrapped by
	// the rendering layer, never here.
	SummaryBox struct {
		Title          string
		Left           []Field
		Right          []Field
		TeacherComment string
		Signatures     []string
	}

	Footer struct {
		GeneratedLine string
		GradingKey    string
	}

	// Options carries the report header inputs the scores themselves don't hold.
	Options struct {
		Institution  string
		Subtitle     string
		AcademicYear string
		Term         string
		GeneratedAt  time.Time
	}
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// BuildDocument assembles the report card for one student and period.
// It is a pure function of its inputs and never fails: an empty score set
// produces an empty-state report, not an error.
func BuildDocument(std student.Student, scores []score.Score, opts Options) Document {
	totals := make([]float64, 0, len(scores))
	for _, sc := range scores {
		totals = append(totals, sc.TotalScore)
	}
	summary := grade.OverallSummary(totals)

	rows := make([]GridRow, 0, len(scores))
	for i, sc := range scores {
		rows = append(rows, GridRow{
			Subject: sc.SubjectName,
			CA:      fmt.Sprintf("%.1f", sc.CAScore),
			Exam:    fmt.Sprintf("%.1f", sc.ExamScore),
			Total:   fmt.Sprintf("%.1f", sc.TotalScore),
			Grade:   string(sc.Grade),
			Remark:  sc.GradeRemark(),
			Shaded:  i%2 == 0,
		})
	}

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	return Document{
		Header: Header{
			Institution: opts.Institution,
			Subtitle:    opts.Subtitle,
			PeriodLine: fmt.Sprintf("Academic Year: %s     Term: %s",
				orNA(opts.AcademicYear), orNA(opts.Term)),
		},
		Info: InfoBlock{
			Title: "STUDENT INFORMATION",
			Left: []Field{
				{Label: "Name:", Value: std.FullName()},
				{Label: "Admission No:", Value: std.AdmissionNumber},
			},
			Right: []Field{
				{Label: "Class:", Value: orNA(std.ClassName)},
				{Label: "Gender:", Value: orNA(std.Gender)},
			},
		},
		Grid: Grid{
			Title: "ACADEMIC PERFORMANCE",
			HeaderRow: GridRow{
				Subject: "SUBJECT",
				CA:      fmt.Sprintf("CA (%d)", grade.MaxCAScore),
				Exam:    fmt.Sprintf("EXAM (%d)", grade.MaxExamScore),
				Total:   "TOTAL",
				Grade:   "GRADE",
				Remark:  "REMARK",
			},
			Rows: rows,
		},
		Summary: SummaryBox{
			Title: "PERFORMANCE SUMMARY",
			Left: []Field{
				{Label: "Total Subjects:", Value: fmt.Sprintf("%d", summary.TotalSubjects)},
				{Label: "Average Score:", Value: fmt.Sprintf("%.2f%%", summary.AverageScore)},
			},
			Right: []Field{
				{Label: "Overall Grade:", Value: string(summary.Grade)},
				{Label: "Remark:", Value: summary.Grade.Remark()},
			},
			TeacherComment: summary.Remark,
			Signatures:     []string{"Class Teacher's Signature", "Principal's Signature"},
		},
		Footer: Footer{
			GeneratedLine: fmt.Sprintf("Generated by %s on %s",
				opts.Institution, generatedAt.Format("02/01/2006")),
			GradingKey: grade.GradingKey(),
		},
	}
}
