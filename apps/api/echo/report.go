package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/reportube/reportube/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports", jwt, staffMiddleware())
	rg.GET("/students/:id", api.download)
	rg.POST("/students/:id/send", api.sendToParent, adminMiddleware())
	rg.POST("/classes/:id/send", api.sendBulk, adminMiddleware())
}

// Handlers

func (api *reportApi) download(ctx echo.Context) error {
	year, term, err := periodParams(ctx)
	if err != nil {
		return err
	}

	pdf, std, err := api.svc.RenderStudentReport(ctx.Request().Context(), ctx.Param("id"), year, term)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s_Report_%s.pdf", strings.ReplaceAll(std.FullName(), " ", "_"), term)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Blob(http.StatusOK, "application/pdf", pdf)
}

func (api *reportApi) sendToParent(ctx echo.Context) error {
	year, term, err := periodParams(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.SendToParent(ctx.Request().Context(), ctx.Param("id"), year, term); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Report card has been sent to the parent on record."})
}

func (api *reportApi) sendBulk(ctx echo.Context) error {
	year, term, err := periodParams(ctx)
	if err != nil {
		return err
	}

	results, err := api.svc.SendBulk(ctx.Request().Context(), ctx.Param("id"), year, term)
	if err != nil {
		return errors.Wrap(err, "dispatching class reports")
	}
	return ctx.JSON(http.StatusOK, SendBulkResponse{Results: results})
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	SendBulkResponse struct {
		Results []report.DispatchResult `json:"results"`
	}
)
