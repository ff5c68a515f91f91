package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/kazi/core"
)

// Transport delivers one reminder to one user. Implementations report
// success or failure only; status codes and provider details stay inside.
type Transport interface {
	SendReminder(ctx context.Context, email, username string, projects []ProjectSummary) error
}

// Failure records one delivery that did not make it.
type Failure struct {
	Username string
	Email    string
	Reason   string
}

// Report accumulates the outcome of one dispatch pass.
type Report struct {
	Sent     int
	Failures []Failure
}

func (r Report) Failed() int { return len(r.Failures) }

// Dispatcher attempts exactly one delivery per non-empty bundle.
// Deliveries are independent: one user's failure never aborts the others.
type Dispatcher struct {
	transport Transport
	logger    core.Logger

	timeout        time.Duration // per-delivery; bounds a hanging recipient
	maxConcurrency int
}

func NewDispatcher(transport Transport, logger core.Logger, conf core.ReminderConfig) *Dispatcher {
	timeout := conf.DeliveryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxConcurrency := conf.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Dispatcher{
		transport:      transport,
		logger:         logger,
		timeout:        timeout,
		maxConcurrency: maxConcurrency,
	}
}

// Dispatch fans deliveries out over a bounded pool and joins them into one Report.
// There is no ordering requirement between users and no retry within a run.
func (d *Dispatcher) Dispatch(ctx context.Context, bundles map[string]*Bundle) Report {
	var (
		mu  sync.Mutex
		rep Report
		wg  sync.WaitGroup
	)
	sem := make(chan struct{}, d.maxConcurrency)

	for _, b := range bundles {
		if len(b.Projects) == 0 {
			continue
		}

		wg.Add(1)
		b := b
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()
			err := d.transport.SendReminder(sendCtx, b.Email, b.Username, b.Projects)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failures = append(rep.Failures, Failure{Username: b.Username, Email: b.Email, Reason: err.Error()})
				d.logger.Warn(fmt.Sprintf("reminder not sent to %s (%s): %v", b.Username, b.Email, err), err)
				return
			}
			rep.Sent++
			d.logger.Debug(fmt.Sprintf("reminder sent to %s", b.Username))
		}()
	}

	wg.Wait()
	return rep
}
