// Package scheduler runs the console's periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule purges expired sessions every five minutes.
const DefaultSweepSchedule = "@every 5m"

// Purger removes expired sessions and reports how many were dropped.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Sweeper purges expired console sessions on a cron schedule. Overlapping
// runs are skipped.
type Sweeper struct {
	cron    *cron.Cron
	purger  Purger
	timeout time.Duration
}

func NewSweeper(purger Purger, schedule string) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	s := &Sweeper{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		purger:  purger,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Sweep runs one purge.
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	purged, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		log.Printf("session sweep failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("session sweep purged %d sessions", purged)
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
