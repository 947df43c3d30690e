package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrSubjectNotFound = errors.New("subject not found")
)

type (
	// QueryFilter narrows student listings; zero-value fields are ignored.
	// Search does a case-insensitive match on name or admission number.
	QueryFilter struct {
		ClassID string
		Search  string
	}

	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByAdmissionNumber(ctx context.Context, admNo string) (Student, error)
		// FilterStudents applies AND over the filter fields; only active students
		// are returned, ordered by last then first name.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student, isActive *bool) (Student, error)

		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		AdmissionNumber: ns.AdmissionNumber,
		FirstName:       ns.FirstName,
		LastName:        ns.LastName,
		MiddleName:      null.NewString(ns.MiddleName, ns.MiddleName != ""),
		Gender:          ns.Gender,
		ClassID:         null.NewString(ns.ClassID, ns.ClassID != ""),
		ParentName:      ns.ParentName,
		ParentEmail:     ns.ParentEmail,
		ParentPhone:     ns.ParentPhone,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ns.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", ns.DateOfBirth)
		if err != nil {
			return Student{}, errors.Wrap(err, "parsing date of birth")
		}
		std.DateOfBirth = null.TimeFrom(dob)
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByAdmissionNumber(ctx context.Context, admNo string) (Student, error) {
	return svc.repo.GetStudentByAdmissionNumber(ctx, admNo)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) Deactivate(ctx context.Context, id string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	inactive := false
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std, &inactive)
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		Name:         nc.Name,
		Level:        nc.Level,
		AcademicYear: nc.AcademicYear,
		TeacherID:    null.NewString(nc.TeacherID, nc.TeacherID != ""),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) GetClass(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) QueryClasses(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		Name:      ns.Name,
		Code:      ns.Code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}
