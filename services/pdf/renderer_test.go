package pdfsvc

import (
	"bytes"
	"testing"
	"time"

	"github.com/reportube/reportube/core/report"
	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
)

func testDocument(rows int) report.Document {
	std := student.Student{
		AdmissionNumber: "ADM001",
		FirstName:       "Amani",
		LastName:        "Imani",
		Gender:          "Female",
		ClassName:       "JSS 1A",
	}
	scores := make([]score.Score, 0, rows)
	for i := 0; i < rows; i++ {
		sc := score.Score{SubjectName: "Subject", CAScore: 30, ExamScore: 50}
		sc.Derive()
		scores = append(scores, sc)
	}
	return report.BuildDocument(std, scores, report.Options{
		Institution:  "ReporTube Academy",
		Subtitle:     "Academic Performance Report",
		AcademicYear: "2025/2026",
		Term:         "Term 1",
		GeneratedAt:  time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	})
}

func TestRenderer_Render(t *testing.T) {
	pdf, err := NewRenderer().Render(testDocument(5))
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("output is not a PDF document")
	}
	if len(pdf) < 1000 {
		t.Errorf("len(pdf) = %d; implausibly small", len(pdf))
	}
}

func TestRenderer_Render_emptyGrid(t *testing.T) {
	// an empty score set still renders a complete document
	pdf, err := NewRenderer().Render(testDocument(0))
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("output is not a PDF document")
	}
}

func TestRenderer_Render_longGrid(t *testing.T) {
	// enough rows to overflow onto a second page without breaking output
	pdf, err := NewRenderer().Render(testDocument(40))
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("output is not a PDF document")
	}
}
