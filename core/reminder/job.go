package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/kazi/core"
)

var NowFunc = time.Now // mockable

// Repository supplies the active (user, project) assignment relation,
// one row per pair, fresh on every run.
type Repository interface {
	FetchAssignments(ctx context.Context) ([]AssignmentRow, error)
}

// FetchError marks a run that died before aggregation; nothing was dispatched.
type FetchError struct {
	err error
}

func (e *FetchError) Error() string { return "fetching assignments: " + e.err.Error() }
func (e *FetchError) Cause() error  { return e.err }

// Result is the outcome of one job run.
type Result struct {
	UsersNotified int
	UsersFailed   int
	Failures      []Failure
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Job orchestrates one reminder run: fetch -> aggregate -> dispatch -> summary.
// It keeps no state between runs; the caller guarantees at most one in-flight run.
type Job struct {
	repo       Repository
	dispatcher *Dispatcher
	logger     core.Logger
}

func NewJob(repo Repository, dispatcher *Dispatcher, logger core.Logger) *Job {
	return &Job{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run executes one full pass. A fetch failure is fatal for the run and is
// returned as a *FetchError; individual delivery failures are not, they only
// show up in the Result.
func (j *Job) Run(ctx context.Context) (Result, error) {
	res := Result{StartedAt: NowFunc()}
	j.logger.Info("daily reminder run started")

	rows, err := j.repo.FetchAssignments(ctx)
	if err != nil {
		ferr := &FetchError{err: err}
		j.logger.Error(fmt.Sprintf("daily reminder run aborted: %v", ferr), ferr)
		res.FinishedAt = NowFunc()
		return res, ferr
	}

	bundles, conflicts := Aggregate(rows, res.StartedAt)
	for _, c := range conflicts {
		j.logger.Warn(fmt.Sprintf("conflicting %s for user %s: kept %q, got %q", c.Field, c.UserID, c.Kept, c.Got))
	}

	rep := j.dispatcher.Dispatch(ctx, bundles)

	res.UsersNotified = rep.Sent
	res.UsersFailed = rep.Failed()
	res.Failures = rep.Failures
	res.FinishedAt = NowFunc()
	j.logger.Info(fmt.Sprintf("daily reminder run complete: %d notified, %d failed", res.UsersNotified, res.UsersFailed))
	return res, nil
}
