package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/reportube/reportube/core/student"
)

const studentCols = `id, admission_number, first_name, last_name, middle_name, date_of_birth,
	gender, class_id, parent_name, parent_email, parent_phone, is_active, created_at, updated_at`

const joinedStudentCols = `st.id, st.admission_number, st.first_name, st.last_name, st.middle_name, st.date_of_birth,
	st.gender, st.class_id, st.parent_name, st.parent_email, st.parent_phone, st.is_active, st.created_at, st.updated_at,
	COALESCE(c.name, '') AS class_name, COALESCE(c.level, '') AS class_level`

const studentJoins = ` LEFT JOIN class c ON c.id = st.class_id`

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if std.ID == "" {
		std.ID = uuid.New().String()
	}

	q := `
		INSERT INTO student (` + studentCols + `)
		VALUES (:id, :admission_number, :first_name, :last_name, :middle_name, :date_of_birth,
			:gender, :class_id, :parent_name, :parent_email, :parent_phone, :is_active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, std); err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	q := `SELECT ` + joinedStudentCols + ` FROM student st` + studentJoins + ` WHERE st.id = $1`
	return repo.getStudent(ctx, q, id)
}

func (repo studentRepository) GetStudentByAdmissionNumber(ctx context.Context, admNo string) (student.Student, error) {
	q := `SELECT ` + joinedStudentCols + ` FROM student st` + studentJoins + ` WHERE st.admission_number = $1`
	return repo.getStudent(ctx, q, admNo)
}

func (repo studentRepository) getStudent(ctx context.Context, q string, arg interface{}) (student.Student, error) {
	var std student.Student
	if err := repo.db.GetContext(ctx, &std, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return std, nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	q := `SELECT ` + joinedStudentCols + ` FROM student st` + studentJoins + ` WHERE st.is_active`
	args := make([]interface{}, 0, 2)

	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		q += ` AND st.class_id = $1`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		arg := "$1"
		if len(args) == 2 {
			arg = "$2"
		}
		q += ` AND (st.first_name ILIKE ` + arg +
			` OR st.last_name ILIKE ` + arg +
			` OR st.admission_number ILIKE ` + arg + `)`
	}
	q += ` ORDER BY st.last_name, st.first_name`

	var students []student.Student
	if err := repo.db.SelectContext(ctx, &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, isActive *bool) (student.Student, error) {
	if isActive != nil {
		std.IsActive = *isActive
	}

	q := `
		UPDATE student
		SET admission_number = :admission_number,
			first_name       = :first_name,
			last_name        = :last_name,
			middle_name      = :middle_name,
			date_of_birth    = :date_of_birth,
			gender           = :gender,
			class_id         = :class_id,
			parent_name      = :parent_name,
			parent_email     = :parent_email,
			parent_phone     = :parent_phone,
			is_active        = :is_active,
			updated_at       = :updated_at
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, repo.db, q, std)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) CreateClass(ctx context.Context, cls student.Class) (student.Class, error) {
	if cls.ID == "" {
		cls.ID = uuid.New().String()
	}

	q := `
		INSERT INTO class (id, name, level, academic_year, teacher_id, created_at, updated_at)
		VALUES (:id, :name, :level, :academic_year, :teacher_id, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, cls); err != nil {
		return student.Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (repo studentRepository) GetClassByID(ctx context.Context, id string) (student.Class, error) {
	var cls student.Class
	err := repo.db.GetContext(ctx, &cls, `SELECT * FROM class WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Class{}, student.ErrClassNotFound
		}
		return student.Class{}, errors.Wrap(err, "getting class")
	}
	return cls, nil
}

func (repo studentRepository) QueryAllClasses(ctx context.Context) ([]student.Class, error) {
	var classes []student.Class
	if err := repo.db.SelectContext(ctx, &classes, `SELECT * FROM class ORDER BY level, name`); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return classes, nil
}

func (repo studentRepository) CreateSubject(ctx context.Context, sub student.Subject) (student.Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	q := `
		INSERT INTO subject (id, name, code, created_at, updated_at)
		VALUES (:id, :name, :code, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, sub); err != nil {
		return student.Subject{}, errors.Wrap(err, "creating subject")
	}
	return sub, nil
}

func (repo studentRepository) GetSubjectByID(ctx context.Context, id string) (student.Subject, error) {
	var sub student.Subject
	err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subject WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return student.Subject{}, student.ErrSubjectNotFound
		}
		return student.Subject{}, errors.Wrap(err, "getting subject")
	}
	return sub, nil
}

func (repo studentRepository) QueryAllSubjects(ctx context.Context) ([]student.Subject, error) {
	var subjects []student.Subject
	if err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subject ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}
