package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const runTimeout = 5 * time.Minute

type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	schedule   string
	log        zerolog.Logger
}

// NewScheduler expects a six-field cron expression (with seconds).
func NewScheduler(reconciler *Reconciler, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{
		cron:       c,
		reconciler: reconciler,
		schedule:   schedule,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if s.reconciler == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.reconcile); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for a running job to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("reconciliation still running at shutdown")
	}
}

func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := s.reconciler.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("reconciliation failed")
	}
}
