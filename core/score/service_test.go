package score_test

import (
	"context"
	"testing"

	"github.com/reportube/reportube/core/score"
	inmemdb "github.com/reportube/reportube/storage/database/inmem"
)

func setup(t *testing.T) *score.Service {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return score.NewService(inmemdb.NewScoreRepository(db))
}

func newScore(student, subject string, ca, exam float64) score.NewScore {
	return score.NewScore{
		StudentID:    student,
		SubjectID:    subject,
		ClassID:      "cls1",
		TeacherID:    "tch1",
		AcademicYear: "2025/2026",
		Term:         "Term 1",
		CAScore:      ca,
		ExamScore:    exam,
	}
}

func TestService_Upsert(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	sc, err := svc.Upsert(ctx, newScore("std1", "sub1", 35, 55))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if sc.ID == "" {
		t.Error("stored score has no id")
	}
	if sc.TotalScore != 90 {
		t.Errorf("total = %v; want 90", sc.TotalScore)
	}
	if sc.Grade != "A+" {
		t.Errorf("grade = %q; want A+", sc.Grade)
	}
	if sc.IsApproved {
		t.Error("fresh entry must not be approved")
	}

	// same (student, subject, period) identity replaces in place
	sc2, err := svc.Upsert(ctx, newScore("std1", "sub1", 20, 30))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if sc2.ID != sc.ID {
		t.Errorf("re-entry created a new record: %q != %q", sc2.ID, sc.ID)
	}
	if sc2.TotalScore != 50 {
		t.Errorf("total = %v; want 50", sc2.TotalScore)
	}

	// a different subject is a separate record
	sc3, err := svc.Upsert(ctx, newScore("std1", "sub2", 20, 30))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if sc3.ID == sc.ID {
		t.Error("different subject must not share a record")
	}
}

func TestService_Upsert_voidsApproval(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	sc, err := svc.Upsert(ctx, newScore("std1", "sub1", 30, 50))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if _, err = svc.Approve(ctx, sc.ID, "adm1"); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	sc, err = svc.Upsert(ctx, newScore("std1", "sub1", 32, 52))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if sc.IsApproved {
		t.Error("re-entry must void the prior approval")
	}
	if sc.ApprovedBy.Valid || sc.ApprovedAt.Valid {
		t.Error("re-entry must clear the approval stamp")
	}
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	fPtr := func(f float64) *float64 { return &f }

	sc, err := svc.Upsert(ctx, newScore("std1", "sub1", 30, 50))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if _, err = svc.Approve(ctx, sc.ID, "adm1"); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	if _, err = svc.Update(ctx, sc.ID, score.UpdateScore{}); err != score.ErrEmptyUpdate {
		t.Errorf("err = %v; want ErrEmptyUpdate", err)
	}
	if _, err = svc.Update(ctx, "nope", score.UpdateScore{CAScore: fPtr(20)}); err != score.ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}

	// resulting pair is validated against the untouched component
	if _, err = svc.Update(ctx, sc.ID, score.UpdateScore{ExamScore: fPtr(75)}); err == nil {
		t.Error("out-of-range exam score should have been rejected")
	}

	updated, err := svc.Update(ctx, sc.ID, score.UpdateScore{ExamScore: fPtr(55)})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.CAScore != 30 || updated.ExamScore != 55 {
		t.Errorf("ca/exam = %v/%v; want 30/55", updated.CAScore, updated.ExamScore)
	}
	if updated.TotalScore != 85 || updated.Grade != "A" {
		t.Errorf("total/grade = %v/%q; want 85/A", updated.TotalScore, updated.Grade)
	}
	if updated.IsApproved {
		t.Error("correction must void the prior approval")
	}
}

func TestService_Approve(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	sc, err := svc.Upsert(ctx, newScore("std1", "sub1", 30, 50))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	if _, err = svc.Approve(ctx, "nope", "adm1"); err != score.ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}

	approved, err := svc.Approve(ctx, sc.ID, "adm1")
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if !approved.IsApproved {
		t.Error("score should be approved")
	}
	if approved.ApprovedBy.String != "adm1" || !approved.ApprovedAt.Valid {
		t.Errorf("approval stamp = %v/%v; want adm1 and a timestamp", approved.ApprovedBy, approved.ApprovedAt)
	}

	// approving again is a no-op success
	if _, err = svc.Approve(ctx, sc.ID, "adm2"); err != nil {
		t.Errorf("re-approval failed: %v", err)
	}
}

func TestService_ApproveMany(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	sc1, err := svc.Upsert(ctx, newScore("std1", "sub1", 30, 50))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	sc2, err := svc.Upsert(ctx, newScore("std2", "sub1", 25, 40))
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	// missing ids are skipped, not errors
	approved, err := svc.ApproveMany(ctx, []string{sc1.ID, "nope", sc2.ID}, "adm1")
	if err != nil {
		t.Fatalf("ApproveMany() failed: %v", err)
	}
	if len(approved) != 2 {
		t.Fatalf("len(approved) = %d; want 2", len(approved))
	}
	for _, sc := range approved {
		if !sc.IsApproved || sc.ApprovedBy.String != "adm1" {
			t.Errorf("score %q not stamped: %+v", sc.ID, sc)
		}
	}
}

func TestService_BulkUpsert(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	results := svc.BulkUpsert(ctx, []score.NewScore{
		newScore("std1", "sub1", 30, 45),
		newScore("std2", "sub1", 55, 20), // CA out of range
		newScore("std3", "sub1", 20, 70), // exam out of range
	})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d; want 3", len(results))
	}
	if !results[0].Success {
		t.Errorf("row 1 failed: %v", results[0].Errors)
	}
	for i, res := range results[1:] {
		if res.Success || len(res.Errors) == 0 {
			t.Errorf("row %d should have failed validation", i+2)
		}
	}

	// the failing rows must not have landed
	scores, err := svc.FilterByClassSubject(ctx, "cls1", "sub1", "2025/2026", "Term 1")
	if err != nil {
		t.Fatalf("FilterByClassSubject() failed: %v", err)
	}
	if len(scores) != 1 {
		t.Errorf("len(scores) = %d; want 1", len(scores))
	}
}

func TestService_ClassStatistics(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	// empty class yields the zero summary
	stats, err := svc.ClassStatistics(ctx, "cls1", "2025/2026", "Term 1")
	if err != nil {
		t.Fatalf("ClassStatistics() failed: %v", err)
	}
	if stats.Count != 0 || stats.ApprovedCount != 0 || stats.PendingCount != 0 {
		t.Errorf("stats = %+v; want zero values", stats)
	}

	sc, err := svc.Upsert(ctx, newScore("std1", "sub1", 35, 55)) // 90
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if _, err = svc.Upsert(ctx, newScore("std2", "sub1", 10, 20)); err != nil { // 30
		t.Fatalf("Upsert() failed: %v", err)
	}
	if _, err = svc.Approve(ctx, sc.ID, "adm1"); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	stats, err = svc.ClassStatistics(ctx, "cls1", "2025/2026", "Term 1")
	if err != nil {
		t.Fatalf("ClassStatistics() failed: %v", err)
	}
	if stats.Count != 2 || stats.Average != 60 || stats.Highest != 90 || stats.Lowest != 30 {
		t.Errorf("stats = %+v; want count=2 avg=60 high=90 low=30", stats.Statistics)
	}
	if stats.PassRate != 50 {
		t.Errorf("pass_rate = %v; want 50", stats.PassRate)
	}
	if stats.ApprovedCount != 1 || stats.PendingCount != 1 {
		t.Errorf("approved/pending = %d/%d; want 1/1", stats.ApprovedCount, stats.PendingCount)
	}
}
