package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/reportube/reportube/apps/api/echo"
	"github.com/reportube/reportube/core"
	"github.com/reportube/reportube/core/report"
	"github.com/reportube/reportube/core/score"
	"github.com/reportube/reportube/core/student"
	"github.com/reportube/reportube/core/user"
	emailsvc "github.com/reportube/reportube/services/email"
	logsvc "github.com/reportube/reportube/services/logger"
	pdfsvc "github.com/reportube/reportube/services/pdf"
	"github.com/reportube/reportube/storage/database"
	sqlxrepos "github.com/reportube/reportube/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	validate, translator := core.NewValidator()
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), mailSvc, conf)
	user.RegisterValidators(validate, translator)

	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(sdb))
	scoreSvc := score.NewService(sqlxrepos.NewScoreRepository(sdb))
	reportSvc := report.NewService(stdSvc, scoreSvc, pdfsvc.NewRenderer(), mailSvc, conf)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			StudentSvc: stdSvc,
			ScoreSvc:   scoreSvc,
			ReportSvc:  reportSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	select {
	case err := <-serverErrors:
		logger.Fatal("server error", err)
	case sig := <-shutdown:
		logger.Info("shutdown started", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			logger.Fatal("could not stop server gracefully", err)
		}
	}
}
