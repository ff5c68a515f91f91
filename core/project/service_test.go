package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

type fakeRepository struct {
	projects    map[string]Project
	assignments map[string][]string
}

var _ Repository = (*fakeRepository)(nil)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		projects:    make(map[string]Project),
		assignments: make(map[string][]string),
	}
}

func (r *fakeRepository) CountProjects(ctx context.Context) (int, error) {
	return len(r.projects), nil
}

func (r *fakeRepository) CreateProject(ctx context.Context, prj Project) (Project, error) {
	r.projects[prj.ID] = prj
	return prj, nil
}

func (r *fakeRepository) AssignUsers(ctx context.Context, projectID string, userIDs []string) error {
	r.assignments[projectID] = append(r.assignments[projectID], userIDs...)
	return nil
}

func (r *fakeRepository) ClearAssignments(ctx context.Context, projectID string) error {
	delete(r.assignments, projectID)
	return nil
}

func (r *fakeRepository) QueryProjects(ctx context.Context, limit, offset int) ([]Detail, error) {
	return nil, nil
}

func (r *fakeRepository) GetProject(ctx context.Context, id string) (Detail, error) {
	if prj, ok := r.projects[id]; ok {
		return Detail{Project: prj}, nil
	}
	return Detail{}, ErrNotFound
}

func (r *fakeRepository) GetOwnedProject(ctx context.Context, id, creatorID string) (Project, error) {
	prj, ok := r.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	if prj.CreatedBy != creatorID {
		return Project{}, ErrNotOwner
	}
	return prj, nil
}

func (r *fakeRepository) QueryUserProjects(ctx context.Context, userID string) ([]Project, error) {
	return nil, nil
}

func (r *fakeRepository) UpdateProject(ctx context.Context, prj Project) error {
	if _, ok := r.projects[prj.ID]; !ok {
		return ErrNotFound
	}
	r.projects[prj.ID] = prj
	return nil
}

func (r *fakeRepository) DeleteProject(ctx context.Context, id string) error {
	delete(r.projects, id)
	return nil
}

// fakeUserSvc resolves usernames from a fixed set; the embedded interface
// panics on anything else, which would flag an unexpected call.
type fakeUserSvc struct {
	user.Service
	users map[string]user.User
}

func (svc fakeUserSvc) GetByUsername(ctx context.Context, uname string) (user.User, error) {
	if usr, ok := svc.users[uname]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

type fakeMailService struct {
	sent []*core.EmailMessage
}

func (svc *fakeMailService) SendMessages(messages ...*core.EmailMessage) {
	svc.sent = append(svc.sent, messages...)
}

func (svc *fakeMailService) SendMessage(msg *core.EmailMessage) error {
	svc.sent = append(svc.sent, msg)
	return nil
}

func TestService_Create(t *testing.T) {
	origNow := NowFunc
	NowFunc = func() time.Time { return time.Date(2026, time.September, 2, 10, 0, 0, 0, time.UTC) }
	defer func() { NowFunc = origNow }()

	creator := user.User{ID: "u-1", Username: "boss"}
	worker := user.User{ID: "u-2", Username: "worker", Email: "worker@test.cd"}

	repo := newFakeRepository()
	mailSvc := &fakeMailService{}
	svc := NewService(repo, fakeUserSvc{users: map[string]user.User{"worker": worker}}, mailSvc, nil, core.NopLogger{})

	np := NewProject{
		Name:        "Launch",
		Description: "Ship it",
		Deadline:    time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
		Assignees:   []string{"worker"},
	}

	prj, err := svc.Create(context.Background(), np, creator)
	assert.NoError(t, err)
	assert.Equal(t, "D02SEP2026KZ0001", prj.ID)
	assert.Equal(t, creator.ID, prj.CreatedBy)
	assert.Equal(t, []string{worker.ID}, repo.assignments[prj.ID])

	// assignee got an email
	if assert.Len(t, mailSvc.sent, 1) {
		assert.Equal(t, worker.Email, mailSvc.sent[0].To[0].Address)
	}

	// next project gets the next sequence number
	prj2, err := svc.Create(context.Background(), np, creator)
	assert.NoError(t, err)
	assert.Equal(t, "D02SEP2026KZ0002", prj2.ID)
}

func TestService_Create_unknownAssignee(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeUserSvc{users: map[string]user.User{}}, &fakeMailService{}, nil, core.NopLogger{})

	np := NewProject{
		Name:        "Launch",
		Description: "Ship it",
		Deadline:    time.Now().AddDate(0, 0, 5),
		Assignees:   []string{"ghost"},
	}

	_, err := svc.Create(context.Background(), np, user.User{ID: "u-1"})
	var vErr *core.ValidationError
	if assert.Error(t, err) {
		vErr, _ = err.(*core.ValidationError)
		if assert.NotNil(t, vErr) {
			assert.Equal(t, "assignees", vErr.Fields[0].Field)
		}
	}
	assert.Empty(t, repo.projects, "nothing should be created")
}

func TestService_UpdateAndDelete_ownerOnly(t *testing.T) {
	owner := user.User{ID: "u-1", Username: "boss"}
	other := user.User{ID: "u-2", Username: "other"}

	repo := newFakeRepository()
	repo.projects["p-1"] = Project{ID: "p-1", Name: "Alpha", CreatedBy: owner.ID}

	svc := NewService(repo, fakeUserSvc{users: map[string]user.User{}}, &fakeMailService{}, nil, core.NopLogger{})

	up := UpdateProject{Name: "Alpha v2", Description: "d", Deadline: time.Now(), Assignees: []string{}}

	err := svc.Update(context.Background(), "p-1", up, other)
	assert.Equal(t, ErrNotOwner, err)

	err = svc.Delete(context.Background(), "p-1", other)
	assert.Equal(t, ErrNotOwner, err)

	err = svc.Delete(context.Background(), "p-1", owner)
	assert.NoError(t, err)
	assert.Empty(t, repo.projects)
}
