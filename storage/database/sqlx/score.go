package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/reportube/reportube/core/score"
)

const scoreCols = `id, student_id, subject_id, class_id, teacher_id, academic_year, term,
	ca_score, exam_score, remark, is_approved, approved_by, approved_at, created_at, updated_at`

// joinedScoreCols prefixes the score columns and adds the subject/student
// reference data returned on reads.
const joinedScoreCols = `s.id, s.student_id, s.subject_id, s.class_id, s.teacher_id, s.academic_year, s.term,
	s.ca_score, s.exam_score, s.remark, s.is_approved, s.approved_by, s.approved_at, s.created_at, s.updated_at,
	sub.name AS subject_name, sub.code AS subject_code,
	TRIM(CONCAT(st.first_name, ' ', st.last_name)) AS student_name, st.admission_number`

const scoreJoins = `
	JOIN subject sub ON sub.id = s.subject_id
	JOIN student st ON st.id = s.student_id`

type scoreRepository struct {
	db *sqlx.DB
}

var _ score.Repository = (*scoreRepository)(nil)

func NewScoreRepository(db *sqlx.DB) *scoreRepository {
	return &scoreRepository{db: db}
}

func (repo scoreRepository) GetScoreByID(ctx context.Context, id string) (score.Score, error) {
	q := `SELECT ` + joinedScoreCols + ` FROM score s` + scoreJoins + ` WHERE s.id = $1`

	var sc score.Score
	if err := repo.db.GetContext(ctx, &sc, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return score.Score{}, score.ErrNotFound
		}
		return score.Score{}, errors.Wrap(err, "getting score")
	}
	return sc, nil
}

func (repo scoreRepository) UpsertScore(ctx context.Context, sc score.Score) (score.Score, error) {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}

	// the conflict target is the score identity; a re-entry overwrites the
	// score components and voids any prior approval in the same statement
	q := `
		INSERT INTO score (` + scoreCols + `)
		VALUES (:id, :student_id, :subject_id, :class_id, :teacher_id, :academic_year, :term,
			:ca_score, :exam_score, :remark, FALSE, NULL, NULL, :created_at, :updated_at)
		ON CONFLICT ON CONSTRAINT score_identity_key DO UPDATE
		SET class_id    = EXCLUDED.class_id,
			teacher_id  = EXCLUDED.teacher_id,
			ca_score    = EXCLUDED.ca_score,
			exam_score  = EXCLUDED.exam_score,
			remark      = EXCLUDED.remark,
			is_approved = FALSE,
			approved_by = NULL,
			approved_at = NULL,
			updated_at  = EXCLUDED.updated_at
		RETURNING ` + scoreCols

	rows, err := sqlx.NamedQueryContext(ctx, repo.db, q, sc)
	if err != nil {
		return score.Score{}, errors.Wrap(err, "upserting score")
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return score.Score{}, errors.Wrap(rows.Err(), "upserting score")
	}
	if err = rows.StructScan(&sc); err != nil {
		return score.Score{}, errors.Wrap(err, "upserting score")
	}
	return sc, rows.Err()
}

func (repo scoreRepository) UpdateScore(ctx context.Context, sc score.Score) (score.Score, error) {
	q := `
		UPDATE score
		SET ca_score    = :ca_score,
			exam_score  = :exam_score,
			remark      = :remark,
			is_approved = FALSE,
			approved_by = NULL,
			approved_at = NULL,
			updated_at  = :updated_at
		WHERE id = :id
		RETURNING ` + scoreCols

	rows, err := sqlx.NamedQueryContext(ctx, repo.db, q, sc)
	if err != nil {
		return score.Score{}, errors.Wrap(err, "updating score")
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return score.Score{}, errors.Wrap(err, "updating score")
		}
		return score.Score{}, score.ErrNotFound
	}
	if err = rows.StructScan(&sc); err != nil {
		return score.Score{}, errors.Wrap(err, "updating score")
	}
	return sc, rows.Err()
}

func (repo scoreRepository) ApproveScore(ctx context.Context, id, approverID string, at time.Time) (score.Score, error) {
	q := `
		UPDATE score
		SET is_approved = TRUE,
			approved_by = $2,
			approved_at = $3,
			updated_at  = $3
		WHERE id = $1
		RETURNING ` + scoreCols

	var sc score.Score
	if err := repo.db.GetContext(ctx, &sc, q, id, approverID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return score.Score{}, score.ErrNotFound
		}
		return score.Score{}, errors.Wrap(err, "approving score")
	}
	return sc, nil
}

func (repo scoreRepository) ApproveScores(ctx context.Context, ids []string, approverID string, at time.Time) ([]score.Score, error) {
	// missing ids simply match no row; only the scores actually stamped come back
	q := `
		UPDATE score
		SET is_approved = TRUE,
			approved_by = $2,
			approved_at = $3,
			updated_at  = $3
		WHERE id = ANY ($1)
		RETURNING ` + scoreCols

	scores := make([]score.Score, 0, len(ids))
	if err := repo.db.SelectContext(ctx, &scores, q, pq.Array(ids), approverID, at); err != nil {
		return nil, errors.Wrap(err, "approving scores")
	}
	return scores, nil
}

func (repo scoreRepository) FilterScoresByStudentPeriod(ctx context.Context, studentID, academicYear, term string) ([]score.Score, error) {
	q := `
		SELECT ` + joinedScoreCols + `
		FROM score s` + scoreJoins + `
		WHERE s.student_id = $1 AND s.academic_year = $2 AND s.term = $3
		ORDER BY sub.name`

	var scores []score.Score
	if err := repo.db.SelectContext(ctx, &scores, q, studentID, academicYear, term); err != nil {
		return nil, errors.Wrap(err, "filtering scores by student")
	}
	return scores, nil
}

func (repo scoreRepository) FilterScoresByClassSubject(ctx context.Context, classID, subjectID, academicYear, term string) ([]score.Score, error) {
	q := `
		SELECT ` + joinedScoreCols + `
		FROM score s` + scoreJoins + `
		WHERE s.class_id = $1 AND s.subject_id = $2 AND s.academic_year = $3 AND s.term = $4
		ORDER BY st.last_name, st.first_name`

	var scores []score.Score
	if err := repo.db.SelectContext(ctx, &scores, q, classID, subjectID, academicYear, term); err != nil {
		return nil, errors.Wrap(err, "filtering scores by class and subject")
	}
	return scores, nil
}

func (repo scoreRepository) FilterScoresByClass(ctx context.Context, classID, academicYear, term string) ([]score.Score, error) {
	q := `
		SELECT ` + joinedScoreCols + `
		FROM score s` + scoreJoins + `
		WHERE s.class_id = $1 AND s.academic_year = $2 AND s.term = $3
		ORDER BY st.last_name, st.first_name, sub.name`

	var scores []score.Score
	if err := repo.db.SelectContext(ctx, &scores, q, classID, academicYear, term); err != nil {
		return nil, errors.Wrap(err, "filtering scores by class")
	}
	return scores, nil
}

func (repo scoreRepository) DeleteScore(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM score WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting score")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return score.ErrNotFound
	}
	return nil
}
