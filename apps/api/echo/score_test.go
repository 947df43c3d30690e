package echoapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
)

// enterScore posts a score as the given token and returns the stored record.
func enterScore(t *testing.T, env *testEnv, token string, std student.Student, sub student.Subject, ca, exam float64) score.Score {
	t.Helper()

	rec := env.request(http.MethodPost, "/v1/scores", token, score.NewScore{
		StudentID:    std.ID,
		SubjectID:    sub.ID,
		ClassID:      std.ClassID.String,
		AcademicYear: "2025/2026",
		Term:         "Term 1",
		CAScore:      ca,
		ExamScore:    exam,
	})
	checkCode(t, rec, http.StatusOK)

	var sc score.Score
	decodeJSON(t, rec, &sc)
	return sc
}

func Test_scoreApi_upsert(t *testing.T) {
	env := setup(t)

	teacher, teacherToken := env.createTeacher(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	std := env.createStudent(t, "Amani", "Imani", "ADM001", cls.ID, "parent@test.cd")
	sub := env.createSubject(t, "Mathematics", "MTH")

	t.Run("auth required", func(t *testing.T) {
		checkCode(t, env.request(http.MethodPost, "/v1/scores", "", score.NewScore{}), http.StatusUnauthorized)
	})

	t.Run("score entered with derived grade", func(t *testing.T) {
		sc := enterScore(t, env, teacherToken, std, sub, 35, 55)
		if sc.TotalScore != 90 {
			t.Errorf("total = %v; want 90", sc.TotalScore)
		}
		if sc.Grade != "A+" {
			t.Errorf("grade = %q; want A+", sc.Grade)
		}
		if sc.IsApproved {
			t.Error("fresh entry must not be approved")
		}
		// teacher stamped from the token when the payload omits it
		if sc.TeacherID.String != teacher.ID {
			t.Errorf("teacher_id = %q; want %q", sc.TeacherID.String, teacher.ID)
		}
	})

	t.Run("out-of-range pair rejected", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/scores", teacherToken, score.NewScore{
			StudentID:    std.ID,
			SubjectID:    sub.ID,
			ClassID:      cls.ID,
			AcademicYear: "2025/2026",
			Term:         "Term 1",
			CAScore:      45, // max is 40
			ExamScore:    70, // max is 60
		})
		checkCode(t, rec, http.StatusBadRequest)

		var fldErrs map[string]string
		decodeJSON(t, rec, &fldErrs)
		if _, ok := fldErrs["ca_score"]; !ok {
			t.Errorf("fldErrs = %v; want ca_score error", fldErrs)
		}
		if _, ok := fldErrs["exam_score"]; !ok {
			t.Errorf("fldErrs = %v; want exam_score error", fldErrs)
		}
	})

	t.Run("re-entry replaces and voids approval", func(t *testing.T) {
		_, adminToken := env.createAdmin(t)

		sc := enterScore(t, env, teacherToken, std, sub, 30, 50)
		rec := env.request(http.MethodPost, "/v1/scores/"+sc.ID+"/approve", adminToken)
		checkCode(t, rec, http.StatusOK)

		sc2 := enterScore(t, env, teacherToken, std, sub, 32, 52)
		if sc2.ID != sc.ID {
			t.Errorf("re-entry created a new record: %q != %q", sc2.ID, sc.ID)
		}
		if sc2.IsApproved {
			t.Error("re-entry must void the prior approval")
		}
		if sc2.ApprovedBy.Valid || sc2.ApprovedAt.Valid {
			t.Error("re-entry must clear the approval stamp")
		}
		if sc2.TotalScore != 84 {
			t.Errorf("total = %v; want 84", sc2.TotalScore)
		}
	})
}

func Test_scoreApi_bulkUpsert(t *testing.T) {
	env := setup(t)

	_, teacherToken := env.createTeacher(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	std1 := env.createStudent(t, "Amani", "Imani", "ADM001", cls.ID, "")
	std2 := env.createStudent(t, "Baraka", "Juma", "ADM002", cls.ID, "")
	sub := env.createSubject(t, "English", "ENG")

	rec := env.request(http.MethodPost, "/v1/scores/bulk", teacherToken, BulkEntryRequest{
		ClassID:      cls.ID,
		SubjectID:    sub.ID,
		AcademicYear: "2025/2026",
		Term:         "Term 1",
		Entries: []BulkEntry{
			{StudentID: std1.ID, CAScore: 30, ExamScore: 45},
			{StudentID: std2.ID, CAScore: 55, ExamScore: 20}, // CA out of range
		},
	})
	checkCode(t, rec, http.StatusOK)

	var resp BulkEntryResponse
	decodeJSON(t, rec, &resp)
	if len(resp.Results) != 2 {
		t.Fatalf("len(results) = %d; want 2", len(resp.Results))
	}
	if !resp.Results[0].Success {
		t.Errorf("row 1 failed: %v", resp.Results[0].Errors)
	}
	if resp.Results[1].Success {
		t.Error("row 2 should have failed validation")
	}
	if len(resp.Results[1].Errors) == 0 {
		t.Error("row 2 should carry validation errors")
	}

	// the valid row must have landed
	rec = env.request(http.MethodGet,
		fmt.Sprintf("/v1/scores/sheet?class_id=%s&subject_id=%s&academic_year=%s&term=%s",
			cls.ID, sub.ID, "2025%2F2026", "Term+1"),
		teacherToken)
	checkCode(t, rec, http.StatusOK)

	var scores []score.Score
	decodeJSON(t, rec, &scores)
	if len(scores) != 1 {
		t.Fatalf("len(scores) = %d; want 1", len(scores))
	}
	if scores[0].StudentID != std1.ID {
		t.Errorf("student_id = %q; want %q", scores[0].StudentID, std1.ID)
	}
}

func Test_scoreApi_update(t *testing.T) {
	env := setup(t)

	_, teacherToken := env.createTeacher(t)
	_, adminToken := env.createAdmin(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	std := env.createStudent(t, "Amani", "Imani", "ADM001", cls.ID, "")
	sub := env.createSubject(t, "Physics", "PHY")

	sc := enterScore(t, env, teacherToken, std, sub, 30, 50)
	fPtr := func(f float64) *float64 { return &f }

	t.Run("empty update rejected", func(t *testing.T) {
		rec := env.request(http.MethodPatch, "/v1/scores/"+sc.ID, teacherToken, score.UpdateScore{})
		checkCode(t, rec, http.StatusBadRequest)
	})
	t.Run("unknown id", func(t *testing.T) {
		rec := env.request(http.MethodPatch, "/v1/scores/nope", teacherToken, score.UpdateScore{CAScore: fPtr(20)})
		checkCode(t, rec, http.StatusNotFound)
	})
	t.Run("resulting pair validated", func(t *testing.T) {
		rec := env.request(http.MethodPatch, "/v1/scores/"+sc.ID, teacherToken, score.UpdateScore{ExamScore: fPtr(75)})
		checkCode(t, rec, http.StatusBadRequest)
	})
	t.Run("correction voids approval", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/scores/"+sc.ID+"/approve", adminToken)
		checkCode(t, rec, http.StatusOK)

		rec = env.request(http.MethodPatch, "/v1/scores/"+sc.ID, teacherToken, score.UpdateScore{ExamScore: fPtr(55)})
		checkCode(t, rec, http.StatusOK)

		var updated score.Score
		decodeJSON(t, rec, &updated)
		if updated.IsApproved {
			t.Error("correction must void the prior approval")
		}
		if updated.TotalScore != 85 {
			t.Errorf("total = %v; want 85", updated.TotalScore)
		}
		if updated.Grade != "A" {
			t.Errorf("grade = %q; want A", updated.Grade)
		}
	})
}

func Test_scoreApi_approve(t *testing.T) {
	env := setup(t)

	_, teacherToken := env.createTeacher(t)
	admin, adminToken := env.createAdmin(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	std := env.createStudent(t, "Amani", "Imani", "ADM001", cls.ID, "")
	sub1 := env.createSubject(t, "Chemistry", "CHM")
	sub2 := env.createSubject(t, "Biology", "BIO")

	sc1 := enterScore(t, env, teacherToken, std, sub1, 30, 50)
	sc2 := enterScore(t, env, teacherToken, std, sub2, 25, 40)

	t.Run("admin required", func(t *testing.T) {
		checkCode(t, env.request(http.MethodPost, "/v1/scores/"+sc1.ID+"/approve", teacherToken), http.StatusForbidden)
	})
	t.Run("unknown id", func(t *testing.T) {
		checkCode(t, env.request(http.MethodPost, "/v1/scores/nope/approve", adminToken), http.StatusNotFound)
	})
	t.Run("approved with stamp", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/scores/"+sc1.ID+"/approve", adminToken)
		checkCode(t, rec, http.StatusOK)

		var approved score.Score
		decodeJSON(t, rec, &approved)
		if !approved.IsApproved {
			t.Error("score should be approved")
		}
		if approved.ApprovedBy.String != admin.ID {
			t.Errorf("approved_by = %q; want %q", approved.ApprovedBy.String, admin.ID)
		}
		if !approved.ApprovedAt.Valid {
			t.Error("approved_at not stamped")
		}
	})
	t.Run("bulk approval skips unknown ids", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/scores/approve", adminToken,
			ApproveMultipleRequest{IDs: []string{sc2.ID, "nope"}})
		checkCode(t, rec, http.StatusOK)

		var resp ApproveMultipleResponse
		decodeJSON(t, rec, &resp)
		if resp.Requested != 2 || resp.Approved != 1 {
			t.Errorf("requested/approved = %d/%d; want 2/1", resp.Requested, resp.Approved)
		}
		if len(resp.Scores) != 1 || !resp.Scores[0].IsApproved {
			t.Errorf("scores = %+v; want one approved score", resp.Scores)
		}
	})
	t.Run("empty id list rejected", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/scores/approve", adminToken, ApproveMultipleRequest{})
		checkCode(t, rec, http.StatusBadRequest)
	})
}

func Test_scoreApi_sheetAndStats(t *testing.T) {
	env := setup(t)

	_, teacherToken := env.createTeacher(t)
	_, adminToken := env.createAdmin(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	amani := env.createStudent(t, "Amani", "Abedi", "ADM001", cls.ID, "")
	zuri := env.createStudent(t, "Zuri", "Zawadi", "ADM002", cls.ID, "")
	sub := env.createSubject(t, "Mathematics", "MTH")

	scAmani := enterScore(t, env, teacherToken, amani, sub, 35, 55) // 90
	enterScore(t, env, teacherToken, zuri, sub, 10, 20)             // 30

	t.Run("period params required", func(t *testing.T) {
		rec := env.request(http.MethodGet, "/v1/scores/sheet?class_id="+cls.ID+"&subject_id="+sub.ID, teacherToken)
		checkCode(t, rec, http.StatusBadRequest)
	})
	t.Run("sheet ordered by student name", func(t *testing.T) {
		rec := env.request(http.MethodGet,
			"/v1/scores/sheet?class_id="+cls.ID+"&subject_id="+sub.ID+"&academic_year=2025%2F2026&term=Term+1",
			teacherToken)
		checkCode(t, rec, http.StatusOK)

		var scores []score.Score
		decodeJSON(t, rec, &scores)
		if len(scores) != 2 {
			t.Fatalf("len(scores) = %d; want 2", len(scores))
		}
		if scores[0].StudentID != amani.ID || scores[1].StudentID != zuri.ID {
			t.Errorf("unexpected order: %q, %q", scores[0].StudentName, scores[1].StudentName)
		}
		if scores[0].SubjectName != "Mathematics" || scores[0].AdmissionNumber != "ADM001" {
			t.Errorf("joined fields missing: %+v", scores[0])
		}
	})
	t.Run("class statistics", func(t *testing.T) {
		rec := env.request(http.MethodPost, "/v1/scores/"+scAmani.ID+"/approve", adminToken)
		checkCode(t, rec, http.StatusOK)

		rec = env.request(http.MethodGet,
			"/v1/scores/stats?class_id="+cls.ID+"&academic_year=2025%2F2026&term=Term+1", teacherToken)
		checkCode(t, rec, http.StatusOK)

		var stats score.PeriodStatistics
		decodeJSON(t, rec, &stats)
		if stats.Count != 2 {
			t.Errorf("count = %d; want 2", stats.Count)
		}
		if stats.Average != 60 {
			t.Errorf("average = %v; want 60", stats.Average)
		}
		if stats.Highest != 90 || stats.Lowest != 30 {
			t.Errorf("highest/lowest = %v/%v; want 90/30", stats.Highest, stats.Lowest)
		}
		if stats.PassRate != 50 {
			t.Errorf("pass_rate = %v; want 50", stats.PassRate)
		}
		if stats.ApprovedCount != 1 || stats.PendingCount != 1 {
			t.Errorf("approved/pending = %d/%d; want 1/1", stats.ApprovedCount, stats.PendingCount)
		}
	})
}

func Test_scoreApi_destroy(t *testing.T) {
	env := setup(t)

	_, teacherToken := env.createTeacher(t)
	_, adminToken := env.createAdmin(t)
	cls := env.createClass(t, "JSS 1A", "JSS 1", "2025/2026")
	std := env.createStudent(t, "Amani", "Imani", "ADM001", cls.ID, "")
	sub := env.createSubject(t, "History", "HIS")

	sc := enterScore(t, env, teacherToken, std, sub, 20, 30)

	t.Run("admin required", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/scores/"+sc.ID, teacherToken), http.StatusForbidden)
	})
	t.Run("unknown id", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/scores/nope", adminToken), http.StatusNotFound)
	})
	t.Run("deleted", func(t *testing.T) {
		checkCode(t, env.request(http.MethodDelete, "/v1/scores/"+sc.ID, adminToken), http.StatusNoContent)
		checkCode(t, env.request(http.MethodGet, "/v1/scores/"+sc.ID, teacherToken), http.StatusNotFound)
	})
}
