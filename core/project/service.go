package project

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/push"
	"github.com/trezcool/kazi/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("project not found")
	ErrNotOwner = errors.New("only the project creator may do this")

	errUnknownAssignee = "unknown username"

	assignedEmailSubject = "You've been assigned to: %s"
)

type (
	Service interface {
		Create(ctx context.Context, np NewProject, creator user.User) (Project, error)
		Query(ctx context.Context, page, limit int) ([]Detail, error)
		Get(ctx context.Context, id string) (Detail, error)
		Update(ctx context.Context, id string, up UpdateProject, updater user.User) error
		Delete(ctx context.Context, id string, deleter user.User) error
		QueryByUserID(ctx context.Context, userID string) ([]Project, error)
		QueryByUsername(ctx context.Context, username string) ([]Project, error)
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
		pushSvc push.Service
		logger  core.Logger
	}

	assignedEmailData struct {
		Username    string
		ProjectName string
		ProjectID   string
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	usrSvc user.Service,
	mailSvc core.EmailService,
	pushSvc push.Service,
	logger core.Logger,
) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		pushSvc: pushSvc,
		logger:  logger,
	}
}

// resolveAssignees maps usernames to Users; any unknown username is a validation error.
func (svc *service) resolveAssignees(ctx context.Context, usernames []string) ([]user.User, error) {
	users := make([]user.User, 0, len(usernames))
	for _, uname := range usernames {
		usr, err := svc.usrSvc.GetByUsername(ctx, uname)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return nil, core.NewValidationError(err, core.FieldError{Field: "assignees", Error: errUnknownAssignee + ": " + uname})
			}
			return nil, errors.Wrap(err, "resolving assignee "+uname)
		}
		users = append(users, usr)
	}
	return users, nil
}

func (svc *service) nextProjectID(ctx context.Context) (string, error) {
	count, err := svc.repo.CountProjects(ctx)
	if err != nil {
		return "", errors.Wrap(err, "counting projects")
	}
	return BuildProjectID(count+1, NowFunc()), nil
}

func (svc *service) Create(ctx context.Context, np NewProject, creator user.User) (Project, error) {
	assignees, err := svc.resolveAssignees(ctx, np.Assignees)
	if err != nil {
		return Project{}, err
	}

	id, err := svc.nextProjectID(ctx)
	if err != nil {
		return Project{}, err
	}

	prj := Project{
		ID:          id,
		Name:        np.Name,
		Description: np.Description,
		Deadline:    np.Deadline,
		CreatedBy:   creator.ID,
		CreatedAt:   time.Now().UTC(),
	}
	prj, err = svc.repo.CreateProject(ctx, prj)
	if err != nil {
		return Project{}, errors.Wrap(err, "creating project")
	}

	ids := make([]string, 0, len(assignees))
	for _, usr := range assignees {
		ids = append(ids, usr.ID)
	}
	if err = svc.repo.AssignUsers(ctx, prj.ID, ids); err != nil {
		return Project{}, errors.Wrap(err, "assigning users")
	}

	svc.notifyAssignees(ctx, prj, assignees)
	return prj, nil
}

// notifyAssignees fans out "project assigned" emails and best-effort web-push.
// Notification failures never fail the create.
func (svc *service) notifyAssignees(ctx context.Context, prj Project, assignees []user.User) {
	msgs := make([]*core.EmailMessage, 0, len(assignees))
	for _, usr := range assignees {
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: usr.Username, Address: usr.Email}},
			Subject:      fmt.Sprintf(assignedEmailSubject, prj.Name),
			TemplateName: "project_assigned",
			TemplateData: assignedEmailData{
				Username:    usr.Username,
				ProjectName: prj.Name,
				ProjectID:   prj.ID,
			},
		})
	}
	svc.mailSvc.SendMessages(msgs...)

	if svc.pushSvc == nil {
		return
	}
	payload := push.Notification{
		Title: "New project assigned",
		Body:  prj.Name,
		URL:   "/projects/" + prj.ID,
	}
	for _, usr := range assignees {
		if err := svc.pushSvc.NotifyUser(ctx, usr.ID, payload); err != nil {
			svc.logger.Warn(fmt.Sprintf("push to %s failed: %v", usr.Username, err), err)
		}
	}
}

func (svc *service) Query(ctx context.Context, page, limit int) ([]Detail, error) {
	if page < 1 {
		page = 1
	}
	if limit != 10 && limit != 50 {
		limit = 10
	}
	return svc.repo.QueryProjects(ctx, limit, (page-1)*limit)
}

func (svc *service) Get(ctx context.Context, id string) (Detail, error) {
	return svc.repo.GetProject(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, up UpdateProject, updater user.User) error {
	prj, err := svc.repo.GetOwnedProject(ctx, id, updater.ID)
	if err != nil {
		return err
	}

	assignees, err := svc.resolveAssignees(ctx, up.Assignees)
	if err != nil {
		return err
	}

	prj.Name = up.Name
	prj.Description = up.Description
	prj.Deadline = up.Deadline
	if err = svc.repo.UpdateProject(ctx, prj); err != nil {
		return errors.Wrap(err, "updating project")
	}

	if err = svc.repo.ClearAssignments(ctx, prj.ID); err != nil {
		return errors.Wrap(err, "clearing assignments")
	}
	ids := make([]string, 0, len(assignees))
	for _, usr := range assignees {
		ids = append(ids, usr.ID)
	}
	return errors.Wrap(svc.repo.AssignUsers(ctx, prj.ID, ids), "assigning users")
}

func (svc *service) Delete(ctx context.Context, id string, deleter user.User) error {
	prj, err := svc.repo.GetOwnedProject(ctx, id, deleter.ID)
	if err != nil {
		return err
	}
	if err = svc.repo.ClearAssignments(ctx, prj.ID); err != nil {
		return errors.Wrap(err, "clearing assignments")
	}
	return errors.Wrap(svc.repo.DeleteProject(ctx, prj.ID), "deleting project")
}

func (svc *service) QueryByUserID(ctx context.Context, userID string) ([]Project, error) {
	return svc.repo.QueryUserProjects(ctx, userID)
}

func (svc *service) QueryByUsername(ctx context.Context, username string) ([]Project, error) {
	usr, err := svc.usrSvc.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryUserProjects(ctx, usr.ID)
}
