package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/reportube/reportube/core/score"
)

type scoreRepository struct {
	db      *DB
	scores  *scoreTable
	resolve bool
}

// NewScoreRepository returns a score.Repository backed by db. Joined reference
// data (subject/student names) is resolved from the sibling tables when the
// referenced rows exist.
func NewScoreRepository(db *DB) *scoreRepository {
	return &scoreRepository{db: db, scores: db.score, resolve: true}
}

func (repo *scoreRepository) query() []score.Score {
	scores := make([]score.Score, 0, len(repo.scores.table))
	for _, sc := range repo.scores.table {
		scores = append(scores, repo.resolved(*sc))
	}
	return scores
}

func (repo *scoreRepository) resolved(sc score.Score) score.Score {
	if !repo.resolve {
		return sc
	}
	repo.db.subject.mutex.RLock()
	if sub, ok := repo.db.subject.table[sc.SubjectID]; ok {
		sc.SubjectName = sub.Name
		sc.SubjectCode = sub.Code
	}
	repo.db.subject.mutex.RUnlock()

	repo.db.student.mutex.RLock()
	if std, ok := repo.db.student.table[sc.StudentID]; ok {
		sc.StudentName = std.FirstName + " " + std.LastName
		sc.AdmissionNumber = std.AdmissionNumber
	}
	repo.db.student.mutex.RUnlock()
	return sc
}

func (repo *scoreRepository) GetScoreByID(ctx context.Context, id string) (score.Score, error) {
	repo.scores.mutex.RLock()
	defer repo.scores.mutex.RUnlock()

	if sc, ok := repo.scores.table[id]; ok {
		return repo.resolved(*sc), nil
	}
	return score.Score{}, score.ErrNotFound
}

func (repo *scoreRepository) UpsertScore(ctx context.Context, sc score.Score) (score.Score, error) {
	repo.scores.mutex.Lock()
	defer repo.scores.mutex.Unlock()

	for _, existing := range repo.scores.table {
		if existing.StudentID == sc.StudentID && existing.SubjectID == sc.SubjectID &&
			existing.AcademicYear == sc.AcademicYear && existing.Term == sc.Term {
			sc.ID = existing.ID
			sc.CreatedAt = existing.CreatedAt
			break
		}
	}
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	sc.IsApproved = false
	sc.ApprovedBy = null.String{}
	sc.ApprovedAt = null.Time{}

	repo.scores.table[sc.ID] = &sc
	return sc, nil
}

func (repo *scoreRepository) UpdateScore(ctx context.Context, sc score.Score) (score.Score, error) {
	repo.scores.mutex.Lock()
	defer repo.scores.mutex.Unlock()

	existing, ok := repo.scores.table[sc.ID]
	if !ok {
		return score.Score{}, score.ErrNotFound
	}
	existing.CAScore = sc.CAScore
	existing.ExamScore = sc.ExamScore
	existing.Remark = sc.Remark
	existing.IsApproved = false
	existing.ApprovedBy = null.String{}
	existing.ApprovedAt = null.Time{}
	existing.UpdatedAt = sc.UpdatedAt
	return *existing, nil
}

func (repo *scoreRepository) ApproveScore(ctx context.Context, id, approverID string, at time.Time) (score.Score, error) {
	repo.scores.mutex.Lock()
	defer repo.scores.mutex.Unlock()
	return repo.approve(id, approverID, at)
}

func (repo *scoreRepository) ApproveScores(ctx context.Context, ids []string, approverID string, at time.Time) ([]score.Score, error) {
	repo.scores.mutex.Lock()
	defer repo.scores.mutex.Unlock()

	approved := make([]score.Score, 0, len(ids))
	for _, id := range ids {
		sc, err := repo.approve(id, approverID, at)
		if err != nil {
			continue // skip missing ids
		}
		approved = append(approved, sc)
	}
	return approved, nil
}

func (repo *scoreRepository) approve(id, approverID string, at time.Time) (score.Score, error) {
	sc, ok := repo.scores.table[id]
	if !ok {
		return score.Score{}, score.ErrNotFound
	}
	sc.IsApproved = true
	sc.ApprovedBy = null.StringFrom(approverID)
	sc.ApprovedAt = null.TimeFrom(at)
	sc.UpdatedAt = at
	return *sc, nil
}

func (repo *scoreRepository) FilterScoresByStudentPeriod(ctx context.Context, studentID, academicYear, term string) ([]score.Score, error) {
	repo.scores.mutex.RLock()
	defer repo.scores.mutex.RUnlock()

	scores := make([]score.Score, 0)
	for _, sc := range repo.query() {
		if sc.StudentID == studentID && sc.AcademicYear == academicYear && sc.Term == term {
			scores = append(scores, sc)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].SubjectName < scores[j].SubjectName })
	return scores, nil
}

func (repo *scoreRepository) FilterScoresByClassSubject(ctx context.Context, classID, subjectID, academicYear, term string) ([]score.Score, error) {
	repo.scores.mutex.RLock()
	defer repo.scores.mutex.RUnlock()

	scores := make([]score.Score, 0)
	for _, sc := range repo.query() {
		if sc.ClassID == classID && sc.SubjectID == subjectID && sc.AcademicYear == academicYear && sc.Term == term {
			scores = append(scores, sc)
		}
	}
	sortByStudentName(scores)
	return scores, nil
}

func (repo *scoreRepository) FilterScoresByClass(ctx context.Context, classID, academicYear, term string) ([]score.Score, error) {
	repo.scores.mutex.RLock()
	defer repo.scores.mutex.RUnlock()

	scores := make([]score.Score, 0)
	for _, sc := range repo.query() {
		if sc.ClassID == classID && sc.AcademicYear == academicYear && sc.Term == term {
			scores = append(scores, sc)
		}
	}
	sortByStudentName(scores)
	return scores, nil
}

func (repo *scoreRepository) DeleteScore(ctx context.Context, id string) error {
	repo.scores.mutex.Lock()
	defer repo.scores.mutex.Unlock()

	if _, ok := repo.scores.table[id]; !ok {
		return score.ErrNotFound
	}
	delete(repo.scores.table, id)
	return nil
}

func sortByStudentName(scores []score.Score) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].StudentName != scores[j].StudentName {
			return scores[i].StudentName < scores[j].StudentName
		}
		return scores[i].SubjectName < scores[j].SubjectName
	})
}
