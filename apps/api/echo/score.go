package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/reportube/reportube/core"
	"github.com/reportube/reportube/core/score"
)

type scoreApi struct {
	svc      *score.Service
	validate *validator.Validate
}

func registerScoreAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *score.Service, validate *validator.Validate) {
	api := scoreApi{svc: svc, validate: validate}

	sg := g.Group("/scores", jwt, staffMiddleware())
	sg.POST("", api.upsert)
	sg.POST("/bulk", api.bulkUpsert)
	sg.GET("/sheet", api.sheet)
	sg.GET("/stats", api.classStats)

	// approval is an admin act
	sg.POST("/approve", api.approveMultiple, adminMiddleware())
	sg.POST("/:id/approve", api.approve, adminMiddleware())

	sg.GET("/:id", api.retrieve)
	sg.PATCH("/:id", api.update)
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *scoreApi) upsert(ctx echo.Context) error {
	var data score.NewScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	api.fillTeacher(ctx, &data)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sc, err := api.svc.Upsert(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "entering score")
	}
	return ctx.JSON(http.StatusOK, sc)
}

func (api *scoreApi) bulkUpsert(ctx echo.Context) error {
	var data BulkEntryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkEntryRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, _ := getContextClaims(ctx)
	entries := make([]score.NewScore, 0, len(data.Entries))
	for _, entry := range data.Entries {
		entries = append(entries, score.NewScore{
			StudentID:    entry.StudentID,
			SubjectID:    data.SubjectID,
			ClassID:      data.ClassID,
			TeacherID:    claims.Subject,
			AcademicYear: data.AcademicYear,
			Term:         data.Term,
			CAScore:      entry.CAScore,
			ExamScore:    entry.ExamScore,
			Remark:       entry.Remark,
		})
	}

	results := api.svc.BulkUpsert(ctx.Request().Context(), entries)
	return ctx.JSON(http.StatusOK, BulkEntryResponse{Results: results})
}

func (api *scoreApi) sheet(ctx echo.Context) error {
	classID, subjectID := ctx.QueryParam("class_id"), ctx.QueryParam("subject_id")
	year, term, err := periodParams(ctx)
	if err != nil {
		return err
	}
	if classID == "" || subjectID == "" {
		return core.NewValidationError(errors.New("class_id and subject_id are required"))
	}

	scores, err := api.svc.FilterByClassSubject(ctx.Request().Context(), classID, subjectID, year, term)
	if err != nil {
		return errors.Wrap(err, "loading score sheet")
	}
	if scores == nil {
		scores = []score.Score{}
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *scoreApi) classStats(ctx echo.Context) error {
	classID := ctx.QueryParam("class_id")
	year, term, err := periodParams(ctx)
	if err != nil {
		return err
	}
	if classID == "" {
		return core.NewValidationError(errors.New("class_id is required"))
	}

	stats, err := api.svc.ClassStatistics(ctx.Request().Context(), classID, year, term)
	if err != nil {
		return errors.Wrap(err, "computing class statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *scoreApi) retrieve(ctx echo.Context) error {
	sc, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sc)
}

func (api *scoreApi) update(ctx echo.Context) error {
	var data score.UpdateScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateScore")
	}

	sc, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sc)
}

func (api *scoreApi) approve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sc, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sc)
}

func (api *scoreApi) approveMultiple(ctx echo.Context) error {
	var data ApproveMultipleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApproveMultipleRequest")
	}
	if len(data.IDs) == 0 {
		return core.NewValidationError(errors.New("no score ids supplied"))
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	scores, err := api.svc.ApproveMany(ctx.Request().Context(), data.IDs, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ApproveMultipleResponse{
		Requested: len(data.IDs),
		Approved:  len(scores),
		Scores:    scores,
	})
}

func (api *scoreApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// fillTeacher stamps the entering teacher from the auth claims when the
// payload does not name one.
func (api *scoreApi) fillTeacher(ctx echo.Context, ns *score.NewScore) {
	if ns.TeacherID == "" {
		if claims, err := getContextClaims(ctx); err == nil {
			ns.TeacherID = claims.Subject
		}
	}
}

func periodParams(ctx echo.Context) (academicYear, term string, err error) {
	academicYear, term = ctx.QueryParam("academic_year"), ctx.QueryParam("term")
	if academicYear == "" || term == "" {
		return "", "", core.NewValidationError(errors.New("academic_year and term are required"))
	}
	return academicYear, term, nil
}

type (
	BulkEntryRequest struct {
		ClassID      string      `json:"class_id" validate:"required"`
		SubjectID    string      `json:"subject_id" validate:"required"`
		AcademicYear string      `json:"academic_year" validate:"required"`
		Term         string      `json:"term" validate:"required"`
		Entries      []BulkEntry `json:"entries" validate:"required,min=1,dive"`
	}

	BulkEntry struct {
		StudentID string  `json:"student_id" validate:"required"`
		CAScore   float64 `json:"ca_score"`
		ExamScore float64 `json:"exam_score"`
		Remark    string  `json:"remark"`
	}

	BulkEntryResponse struct {
		Results []score.EntryResult `json:"results"`
	}

	ApproveMultipleRequest struct {
		IDs []string `json:"ids"`
	}

	ApproveMultipleResponse struct {
		Requested int           `json:"requested"`
		Approved  int           `json:"approved"`
		Scores    []score.Score `json:"scores"`
	}
)

func (ber *BulkEntryRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(ber)
}
