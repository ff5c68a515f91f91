package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"net/mail"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/project"
	"github.com/trezcool/kazi/core/push"
	"github.com/trezcool/kazi/core/reminder"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	logsvc "github.com/trezcool/kazi/services/logger"
	pushsvc "github.com/trezcool/kazi/services/push"
	schedsvc "github.com/trezcool/kazi/services/scheduler"
	"github.com/trezcool/kazi/storage/database"
	sqlxrepos "github.com/trezcool/kazi/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	pushSvc := push.NewService(sqlxrepos.NewPushRepository(db), pushsvc.NewWebpushSender(conf), logger)
	prjSvc := project.NewService(sqlxrepos.NewProjectRepository(db), usrSvc, mailSvc, pushSvc, logger)

	reminderJob := reminder.NewJob(
		sqlxrepos.NewReminderRepository(db),
		reminder.NewDispatcher(emailsvc.NewReminderTransport(mailSvc), logger, conf.Reminder),
		logger,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(conf, logger)

	// =========================================================================
	// Start Reminder Scheduler

	sched := schedsvc.NewScheduler(logger)
	if err = sched.AddJob(conf.Reminder.Schedule, "daily-reminder", func(ctx context.Context) {
		if _, err := reminderJob.Run(ctx); err != nil {
			logger.Error(fmt.Sprintf("daily reminder job: %v", err), err)
		}
	}); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling daily reminder: %v", err), err)
	}
	sched.Start()
	defer sched.Stop(conf.Server.ShutdownTimeout)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			ProjectSvc: prjSvc,
			PushSvc:    pushSvc,
			Validate:   validate,
			Translator: translator,
			DBPing:     func(ctx context.Context) error { return db.PingContext(ctx) },
		},
	)

	go func() {
		server.Start()
	}()

	sendStartupEmail(conf, mailSvc, usrSvc, logger)

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// sendStartupEmail notifies the longest-standing admin that the server is up.
func sendStartupEmail(conf *core.Config, mailSvc core.EmailService, usrSvc user.Service, logger core.Logger) {
	admin, err := usrSvc.GetEarliestAdmin(context.Background())
	if err != nil {
		logger.Warn(fmt.Sprintf("startup email skipped: %v", err), err)
		return
	}
	mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: admin.Username, Address: admin.Email}},
		Subject:      "Server started",
		TemplateName: "startup",
		TemplateData: struct {
			Username, AppName, Host, Env, Build string
		}{admin.Username, conf.AppName, conf.Server.Host, conf.Env, conf.Build},
	})
}
