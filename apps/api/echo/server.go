package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/reportube/reportube/core"
	"github.com/reportube/reportube/core/report"
	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
	"github.com/reportube/reportube/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc    *user.Service
		StudentSvc *student.Service
		ScoreSvc   *score.Service
		ReportSvc  *report.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, func() { _ = s.Stop(context.Background()) })
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	auth := newJWTAuth(conf)
	jwt := auth.middleware()

	registerUserAPI(v1, jwt, auth, s.opts.UserSvc, s.opts.Validate, s.opts.Translator)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc, s.opts.Validate)
	registerScoreAPI(v1, jwt, s.opts.ScoreSvc, s.opts.Validate)
	registerReportAPI(v1, jwt, s.opts.ReportSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.ServerAddress())
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ReporTube API!")
}
