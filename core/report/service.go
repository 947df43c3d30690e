package report

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/reportube/reportube/core"
	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
)

var (
	// errors
	ErrNoParentEmail = errors.New("student has no parent email on record")
)

type (
	// Renderer serializes a Document into a paginated binary format (PDF).
	Renderer interface {
		Render(doc Document) ([]byte, error)
	}

	Service struct {
		studentSvc *student.Service
		scoreSvc   *score.Service
		renderer   Renderer
		mailSvc    core.EmailService
		conf       *core.Config
	}

	// DispatchResult is the per-student outcome of a bulk report send.
	DispatchResult struct {
		StudentID   string `json:"student_id"`
		StudentName string `json:"student_name"`
		ParentEmail string `json:"parent_email,omitempty"`
		Success     bool   `json:"success"`
		Error       string `json:"error,omitempty"`
	}
)

func NewService(
	studentSvc *student.Service,
	scoreSvc *score.Service,
	renderer Renderer,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		studentSvc: studentSvc,
		scoreSvc:   scoreSvc,
		renderer:   renderer,
		mailSvc:    mailSvc,
		conf:       conf,
	}
}

func (svc *Service) options(academicYear, term string) Options {
	return Options{
		Institution:  svc.conf.AppName,
		Subtitle:     svc.conf.AppSubtitle,
		AcademicYear: academicYear,
		Term:         term,
		GeneratedAt:  time.Now().UTC(),
	}
}

// BuildStudentDocument loads the student and their period scores and builds
// the report card description. A student with no scores gets an empty-state
// report, not an error.
func (svc *Service) BuildStudentDocument(ctx context.Context, studentID, academicYear, term string) (Document, student.Student, error) {
	std, err := svc.studentSvc.GetByID(ctx, studentID)
	if err != nil {
		return Document{}, student.Student{}, err
	}
	scores, err := svc.scoreSvc.FilterByStudentPeriod(ctx, studentID, academicYear, term)
	if err != nil {
		return Document{}, student.Student{}, errors.Wrap(err, "loading student scores")
	}
	return BuildDocument(std, scores, svc.options(academicYear, term)), std, nil
}

// RenderStudentReport builds and serializes the report card PDF.
func (svc *Service) RenderStudentReport(ctx context.Context, studentID, academicYear, term string) ([]byte, student.Student, error) {
	doc, std, err := svc.BuildStudentDocument(ctx, studentID, academicYear, term)
	if err != nil {
		return nil, student.Student{}, err
	}
	pdf, err := svc.renderer.Render(doc)
	if err != nil {
		return nil, student.Student{}, errors.Wrap(err, "rendering report")
	}
	return pdf, std, nil
}

// SendToParent renders the student's report card and emails it to the parent
// with the PDF attached.
func (svc *Service) SendToParent(ctx context.Context, studentID, academicYear, term string) error {
	pdf, std, err := svc.RenderStudentReport(ctx, studentID, academicYear, term)
	if err != nil {
		return err
	}
	if std.ParentEmail == "" {
		return ErrNoParentEmail
	}

	msg, err := svc.reportMessage(std, pdf, academicYear, term)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// SendBulk dispatches report cards to every active student of a class.
// Each student is handled independently; failures are reported per student
// and never abort the batch.
func (svc *Service) SendBulk(ctx context.Context, classID, academicYear, term string) ([]DispatchResult, error) {
	students, err := svc.studentSvc.Filter(ctx, student.QueryFilter{ClassID: classID})
	if err != nil {
		return nil, errors.Wrap(err, "loading class students")
	}

	results := make([]DispatchResult, 0, len(students))
	for _, std := range students {
		res := DispatchResult{
			StudentID:   std.ID,
			StudentName: std.FullName(),
			ParentEmail: std.ParentEmail,
		}
		if err := svc.SendToParent(ctx, std.ID, academicYear, term); err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
		}
		results = append(results, res)
	}
	return results, nil
}

func (svc *Service) reportMessage(std student.Student, pdf []byte, academicYear, term string) (*core.EmailMessage, error) {
	name := std.FullName()
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: std.ParentName, Address: std.ParentEmail}},
		Subject: fmt.Sprintf("%s - Academic Report %s %s", name, academicYear, term),
		TextContent: fmt.Sprintf(
			"Dear Parent/Guardian,\n\nPlease find attached the academic performance report for %s "+
				"(Academic Year: %s, Term: %s).\n\nBest regards,\nThe Academic Team",
			name, orNA(academicYear), orNA(term)),
		HTMLContent: renderReportMailHTML(svc.conf.AppName, name, academicYear, term),
	}

	filename := fmt.Sprintf("%s_Report_%s.pdf", strings.ReplaceAll(name, " ", "_"), term)
	if err := msg.Attach(bytes.NewReader(pdf), filename, "application/pdf"); err != nil {
		return nil, errors.Wrap(err, "attaching report")
	}
	return msg, nil
}
