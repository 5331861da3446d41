package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSweepSchedule runs the sweep every five minutes.
const DefaultSweepSchedule = "*/5 * * * *"

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// DraftSweeper expires idle drafts on a cron schedule.
type DraftSweeper struct {
	target   Sweeper
	schedule string
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewDraftSweeper validates schedule (standard five-field cron syntax) and
// creates the worker.
func NewDraftSweeper(target Sweeper, schedule string, logger *zap.Logger) (*DraftSweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return &DraftSweeper{
		target:   target,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(cron.WithParser(parser)),
	}, nil
}

// Name implements Worker
func (s *DraftSweeper) Name() string {
	return "draft-sweeper"
}

// Start implements Worker
func (s *DraftSweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule draft sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Draft sweeper scheduled", zap.String("schedule", s.schedule))

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

// Stop implements Worker. It waits for a running sweep to finish.
func (s *DraftSweeper) Stop() error {
	<-s.cron.Stop().Done()
	return nil
}

// RunOnce sweeps immediately.
func (s *DraftSweeper) RunOnce() {
	if removed := s.target.Sweep(time.Now()); removed > 0 {
		s.logger.Debug("Draft sweep finished", zap.Int("removed", removed))
	}
}
