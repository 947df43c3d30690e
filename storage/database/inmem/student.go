package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/reportube/reportube/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) resolved(std student.Student) student.Student {
	if std.ClassID.Valid {
		repo.db.class.mutex.RLock()
		if cls, ok := repo.db.class.table[std.ClassID.String]; ok {
			std.ClassName = cls.Name
			std.Level = cls.Level
		}
		repo.db.class.mutex.RUnlock()
	}
	return std
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	repo.db.student.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	if std, ok := repo.db.student.table[id]; ok {
		return repo.resolved(*std), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByAdmissionNumber(ctx context.Context, admNo string) (student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	for _, std := range repo.db.student.table {
		if std.AdmissionNumber == admNo {
			return repo.resolved(*std), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	students := make([]student.Student, 0)
	for _, std := range repo.db.student.table {
		if !std.IsActive {
			continue
		}
		if filter.ClassID != "" && std.ClassID.String != filter.ClassID {
			continue
		}
		if search != "" && !matchesStudent(*std, search) {
			continue
		}
		students = append(students, repo.resolved(*std))
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
	return students, nil
}

func matchesStudent(std student.Student, search string) bool {
	return strings.Contains(strings.ToLower(std.FirstName), search) ||
		strings.Contains(strings.ToLower(std.LastName), search) ||
		strings.Contains(strings.ToLower(std.AdmissionNumber), search)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, isActive *bool) (student.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	existing, ok := repo.db.student.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if isActive != nil {
		std.IsActive = *isActive
	} else {
		std.IsActive = existing.IsActive
	}
	std.CreatedAt = existing.CreatedAt
	repo.db.student.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) CreateClass(ctx context.Context, cls student.Class) (student.Class, error) {
	repo.db.class.mutex.Lock()
	defer repo.db.class.mutex.Unlock()

	if cls.ID == "" {
		cls.ID = uuid.New().String()
	}
	repo.db.class.table[cls.ID] = &cls
	return cls, nil
}

func (repo *studentRepository) GetClassByID(ctx context.Context, id string) (student.Class, error) {
	repo.db.class.mutex.RLock()
	defer repo.db.class.mutex.RUnlock()

	if cls, ok := repo.db.class.table[id]; ok {
		return *cls, nil
	}
	return student.Class{}, student.ErrClassNotFound
}

func (repo *studentRepository) QueryAllClasses(ctx context.Context) ([]student.Class, error) {
	repo.db.class.mutex.RLock()
	defer repo.db.class.mutex.RUnlock()

	classes := make([]student.Class, 0, len(repo.db.class.table))
	for _, cls := range repo.db.class.table {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Level != classes[j].Level {
			return classes[i].Level < classes[j].Level
		}
		return classes[i].Name < classes[j].Name
	})
	return classes, nil
}

func (repo *studentRepository) CreateSubject(ctx context.Context, sub student.Subject) (student.Subject, error) {
	repo.db.subject.mutex.Lock()
	defer repo.db.subject.mutex.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	repo.db.subject.table[sub.ID] = &sub
	return sub, nil
}

func (repo *studentRepository) GetSubjectByID(ctx context.Context, id string) (student.Subject, error) {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()

	if sub, ok := repo.db.subject.table[id]; ok {
		return *sub, nil
	}
	return student.Subject{}, student.ErrSubjectNotFound
}

func (repo *studentRepository) QueryAllSubjects(ctx context.Context) ([]student.Subject, error) {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()

	subjects := make([]student.Subject, 0, len(repo.db.subject.table))
	for _, sub := range repo.db.subject.table {
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}
