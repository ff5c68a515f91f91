package schedsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trezcool/kazi/core"
)

// Scheduler runs registered jobs on cron schedules. Schedules may carry a
// CRON_TZ= prefix to pin them to a timezone regardless of server locale.
type Scheduler struct {
	cron   *cron.Cron
	logger core.Logger
}

func NewScheduler(logger core.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger: logger,
	}
}

// AddJob registers fn to run on the given schedule.
// Each run gets a fresh context; a panic in one run does not kill the scheduler.
func (s *Scheduler) AddJob(schedule, name string, fn func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.logger.Debug(fmt.Sprintf("running scheduled job %q", name))
		fn(context.Background())
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs, up to timeout.
func (s *Scheduler) Stop(timeout time.Duration) {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(timeout):
		s.logger.Warn("scheduler stop timed out; abandoning running jobs")
	}
}

// cronLogger adapts core.Logger to cron's logging interface for panic recovery.
type cronLogger struct {
	logger core.Logger
}

func (cl cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.logger.Info(msg, keysAndValues...)
}

func (cl cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{err}, keysAndValues...)
	cl.logger.Error(msg, args...)
}
