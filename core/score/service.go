package score

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/reportube/reportube/core/grade"
)

var (
	// errors
	ErrNotFound    = errors.New("score not found")
	ErrEmptyUpdate = errors.New("no fields to update")
)

type (
	Repository interface {
		GetScoreByID(ctx context.Context, id string) (Score, error)
		// UpsertScore inserts the score or, when its
		// (student, subject, academic year, term) identity already exists,
		// overwrites ca/exam/remark/teacher and resets the approval triple.
		// The write must be atomic per identity.
		UpsertScore(ctx context.Context, sc Score) (Score, error)
		// UpdateScore overwrites ca/exam/remark by ID and resets the approval triple.
		UpdateScore(ctx context.Context, sc Score) (Score, error)
		// ApproveScore stamps the approval triple; ErrNotFound when id is missing.
		ApproveScore(ctx context.Context, id, approverID string, at time.Time) (Score, error)
		// ApproveScores stamps each existing id and returns the scores actually
		// approved; missing ids are skipped.
		ApproveScores(ctx context.Context, ids []string, approverID string, at time.Time) ([]Score, error)
		// FilterScoresByStudentPeriod returns the student's scores ordered by subject name.
		FilterScoresByStudentPeriod(ctx context.Context, studentID, academicYear, term string) ([]Score, error)
		// FilterScoresByClassSubject returns the score-entry sheet rows ordered by student name.
		FilterScoresByClassSubject(ctx context.Context, classID, subjectID, academicYear, term string) ([]Score, error)
		FilterScoresByClass(ctx context.Context, classID, academicYear, term string) ([]Score, error)
		DeleteScore(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PeriodStatistics summarises all score entries of a class for one period.
type PeriodStatistics struct {
	grade.Statistics
	ApprovedCount int `json:"approved_count"`
	PendingCount  int `json:"pending_count"`
}

// Upsert enters scores for a (student, subject, period) identity, replacing any
// previous entry. The caller is expected to have validated the input; the
// approval reset is enforced unconditionally regardless of prior state.
func (svc *Service) Upsert(ctx context.Context, ns NewScore) (Score, error) {
	now := time.Now().UTC()
	sc := Score{
		StudentID:    ns.StudentID,
		SubjectID:    ns.SubjectID,
		ClassID:      ns.ClassID,
		TeacherID:    null.NewString(ns.TeacherID, ns.TeacherID != ""),
		AcademicYear: ns.AcademicYear,
		Term:         ns.Term,
		CAScore:      ns.CAScore,
		ExamScore:    ns.ExamScore,
		Remark:       null.NewString(ns.Remark, ns.Remark != ""),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sc, err := svc.repo.UpsertScore(ctx, sc)
	if err != nil {
		return Score{}, errors.Wrap(err, "upserting score")
	}
	sc.Derive()
	return sc, nil
}

// BulkUpsert enters a sheet of scores, one row per student. Rows are validated
// and written independently; a failing row never aborts the rest.
func (svc *Service) BulkUpsert(ctx context.Context, entries []NewScore) []EntryResult {
	results := make([]EntryResult, 0, len(entries))
	for _, ns := range entries {
		if res := grade.ValidateScorePair(ns.CAScore, ns.ExamScore); !res.Valid {
			results = append(results, EntryResult{StudentID: ns.StudentID, Errors: res.Errors})
			continue
		}
		if _, err := svc.Upsert(ctx, ns); err != nil {
			results = append(results, EntryResult{StudentID: ns.StudentID, Errors: []string{err.Error()}})
			continue
		}
		results = append(results, EntryResult{StudentID: ns.StudentID, Success: true})
	}
	return results
}

// Update applies a partial correction to an existing score. Like Upsert, it
// voids any prior approval.
func (svc *Service) Update(ctx context.Context, id string, us UpdateScore) (Score, error) {
	if us.IsEmpty() {
		return Score{}, ErrEmptyUpdate
	}

	sc, err := svc.repo.GetScoreByID(ctx, id)
	if err != nil {
		return Score{}, err
	}
	if err := us.Validate(sc); err != nil {
		return Score{}, err
	}

	us.Apply(&sc)
	sc.UpdatedAt = time.Now().UTC()
	sc, err = svc.repo.UpdateScore(ctx, sc)
	if err != nil {
		return Score{}, errors.Wrap(err, "updating score")
	}
	sc.Derive()
	return sc, nil
}

// Approve marks a score as finalised for official reports. Approving an
// already-approved score is a no-op success.
func (svc *Service) Approve(ctx context.Context, id, approverID string) (Score, error) {
	sc, err := svc.repo.ApproveScore(ctx, id, approverID, time.Now().UTC())
	if err != nil {
		return Score{}, err
	}
	sc.Derive()
	return sc, nil
}

// ApproveMany approves each score independently; ids that no longer exist are
// skipped and the scores actually approved are returned. Callers that need
// all-or-nothing semantics must wrap this themselves.
func (svc *Service) ApproveMany(ctx context.Context, ids []string, approverID string) ([]Score, error) {
	scores, err := svc.repo.ApproveScores(ctx, ids, approverID, time.Now().UTC())
	if err != nil {
		return nil, errors.Wrap(err, "approving scores")
	}
	return svc.derive(scores), nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Score, error) {
	sc, err := svc.repo.GetScoreByID(ctx, id)
	if err != nil {
		return Score{}, err
	}
	sc.Derive()
	return sc, nil
}

func (svc *Service) FilterByStudentPeriod(ctx context.Context, studentID, academicYear, term string) ([]Score, error) {
	scores, err := svc.repo.FilterScoresByStudentPeriod(ctx, studentID, academicYear, term)
	if err != nil {
		return nil, errors.Wrap(err, "filtering scores by student")
	}
	return svc.derive(scores), nil
}

func (svc *Service) FilterByClassSubject(ctx context.Context, classID, subjectID, academicYear, term string) ([]Score, error) {
	scores, err := svc.repo.FilterScoresByClassSubject(ctx, classID, subjectID, academicYear, term)
	if err != nil {
		return nil, errors.Wrap(err, "filtering scores by class and subject")
	}
	return svc.derive(scores), nil
}

// ClassStatistics aggregates every score entry of a class for a period.
func (svc *Service) ClassStatistics(ctx context.Context, classID, academicYear, term string) (PeriodStatistics, error) {
	scores, err := svc.repo.FilterScoresByClass(ctx, classID, academicYear, term)
	if err != nil {
		return PeriodStatistics{}, errors.Wrap(err, "filtering scores by class")
	}
	scores = svc.derive(scores)

	totals := make([]float64, 0, len(scores))
	var approved int
	for _, sc := range scores {
		totals = append(totals, sc.TotalScore)
		if sc.IsApproved {
			approved++
		}
	}
	return PeriodStatistics{
		Statistics:    grade.ClassStatistics(totals),
		ApprovedCount: approved,
		PendingCount:  len(scores) - approved,
	}, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteScore(ctx, id)
}

func (svc *Service) derive(scores []Score) []Score {
	for i := range scores {
		scores[i].Derive()
	}
	return scores
}
