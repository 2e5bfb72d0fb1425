// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"coursechat/internal/logger"
)

// Evicter drops conversations idle since before cutoff.
type Evicter interface {
	EvictIdle(ctx context.Context, cutoff time.Time) (int, error)
}

type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// AddEviction registers a job evicting conversations idle longer than ttl.
// A non-positive ttl disables eviction.
func (s *Scheduler) AddEviction(spec string, ttl time.Duration, store Evicter) error {
	if ttl <= 0 {
		logger.Info("conversation eviction disabled")
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() { s.evict(store, ttl) })
	if err != nil {
		return fmt.Errorf("schedule eviction %q: %w", spec, err)
	}
	logger.Info("conversation eviction scheduled", "schedule", spec, "ttl", ttl)
	return nil
}

func (s *Scheduler) evict(store Evicter, ttl time.Duration) {
	n, err := store.EvictIdle(s.ctx, s.now().Add(-ttl))
	if err != nil {
		logger.Error("conversation eviction failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("evicted idle conversations", "count", n)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs and cancels their context.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cancel()
}

// Jobs reports the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}
