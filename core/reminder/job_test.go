package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kazi/core"
)

type fakeRepository struct {
	rows []AssignmentRow
	err  error
}

var _ Repository = (*fakeRepository)(nil)

func (r *fakeRepository) FetchAssignments(context.Context) ([]AssignmentRow, error) {
	return r.rows, r.err
}

func TestJob_Run(t *testing.T) {
	now := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	repo := &fakeRepository{
		rows: []AssignmentRow{
			{UserID: "1", Username: "Ann", Email: "a@x.com", ProjectID: "P1", ProjectName: "Alpha", Deadline: now.AddDate(0, 0, 2)},
			{UserID: "1", Username: "Ann", Email: "a@x.com", ProjectID: "P2", ProjectName: "Beta", Deadline: now.AddDate(0, 0, 10)},
			{UserID: "2", Username: "Bo", Email: "b@x.com", ProjectID: "P3", ProjectName: "Gamma", Deadline: now.AddDate(0, 0, -1)},
			{UserID: "3", Username: "Cy", Email: "c@x.com", ProjectID: "P4", ProjectName: "Delta", Deadline: now.AddDate(0, 0, 1)},
		},
	}
	transport := &fakeTransport{
		failFor: map[string]error{"c@x.com": errors.New("connection refused")},
	}
	job := NewJob(repo, newTestDispatcher(transport, 4), core.NopLogger{})

	res, err := job.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, res.UsersNotified)
	assert.Equal(t, 1, res.UsersFailed)
	if assert.Len(t, res.Failures, 1) {
		assert.Equal(t, "c@x.com", res.Failures[0].Email)
	}
	assert.Equal(t, now, res.StartedAt)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com", "c@x.com"}, transport.sentTo)
}

func TestJob_Run_fetchFailureIsFatal(t *testing.T) {
	dbErr := errors.New("connection reset by peer")
	repo := &fakeRepository{err: dbErr}
	transport := &fakeTransport{}
	job := NewJob(repo, newTestDispatcher(transport, 4), core.NopLogger{})

	res, err := job.Run(context.Background())

	if assert.Error(t, err) {
		ferr, ok := err.(*FetchError)
		if assert.True(t, ok) {
			assert.Equal(t, dbErr, ferr.Cause())
		}
	}
	// nothing dispatched
	assert.Zero(t, res.UsersNotified)
	assert.Zero(t, res.UsersFailed)
	assert.Empty(t, transport.sentTo)
}

func TestJob_Run_noAssignments(t *testing.T) {
	repo := &fakeRepository{}
	transport := &fakeTransport{}
	job := NewJob(repo, newTestDispatcher(transport, 4), core.NopLogger{})

	res, err := job.Run(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, res.UsersNotified)
	assert.Zero(t, res.UsersFailed)
	assert.Empty(t, transport.sentTo)
}
