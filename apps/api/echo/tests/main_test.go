package tests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/project"
	"github.com/trezcool/kazi/core/push"
	"github.com/trezcool/kazi/core/user"
	dummymail "github.com/trezcool/kazi/services/email/dummy"
	dummydb "github.com/trezcool/kazi/storage/database/dummy"
)

var (
	app     Server
	conf    *core.Config
	usrRepo user.Repository
	prjRepo project.Repository
	mailSvc *dummymail.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

// fakeSender accepts every push without talking to a push service.
type fakeSender struct{}

func (fakeSender) Send(ctx context.Context, sub push.Subscription, payload []byte) error {
	return nil
}

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	if wd, err := os.Getwd(); err == nil {
		conf.WorkDir = filepath.Join(wd, "..", "..", "..", "..")
	}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		fmt.Printf("dummydb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = dummydb.NewUserRepository(db)
	prjRepo = dummydb.NewProjectRepository(db)

	// set up services
	mailSvc = dummymail.NewService()
	usrSvc := user.NewService(usrRepo)
	pushSvc := push.NewService(dummydb.NewPushRepository(db), fakeSender{}, core.NopLogger{})
	prjSvc := project.NewService(prjRepo, usrSvc, mailSvc, pushSvc, core.NopLogger{})

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, core.NopLogger{})
	user.LoadCommonPasswords(conf, core.NopLogger{})

	// set up server
	app = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     core.NopLogger{},
		UserSvc:    usrSvc,
		ProjectSvc: prjSvc,
		PushSvc:    pushSvc,
		Validate:   validate,
		Translator: translator,
	})

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
