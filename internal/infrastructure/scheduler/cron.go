package scheduler

import (
	"context"
	"time"

	"NewsDigest/internal/ports"
)

// DailyScheduler triggers the job immediately, then once per interval. The
// cron expression is carried for configuration compatibility; the delivery
// ledger makes exact trigger times unimportant, since a late or repeated run
// cannot double-deliver.
type DailyScheduler struct {
	spec     string
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler builds a scheduler; interval <= 0 defaults to 24h.
func NewDailyScheduler(spec string, interval time.Duration) *DailyScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &DailyScheduler{spec: spec, interval: interval}
}

// Start begins ticking until Stop or context cancellation.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-d.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}
