// Package retention removes conversations that have been idle longer
// than the configured age, on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/nadia/taskwise/internal/config"
	"github.com/nadia/taskwise/internal/observability"
	"github.com/nadia/taskwise/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper prunes idle conversations and their messages
type Sweeper struct {
	store    *store.Store
	maxAge   time.Duration
	schedule string
	logger   zerolog.Logger
	cron     *cron.Cron
}

// NewSweeper creates a sweeper from retention configuration. The
// schedule is validated up front so a bad expression fails at startup
// rather than at first trigger.
func NewSweeper(st *store.Store, cfg config.RetentionConfig, logger zerolog.Logger) (*Sweeper, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %d", cfg.MaxAgeDays)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", cfg.Schedule, err)
	}

	return &Sweeper{
		store:    st,
		maxAge:   time.Duration(cfg.MaxAgeDays) * 24 * time.Hour,
		schedule: cfg.Schedule,
		logger:   logger,
	}, nil
}

// Start begins periodic sweeping in the background
func (s *Sweeper) Start() error {
	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}

	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.SweepOnce(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("Retention sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	c.Start()
	s.cron = c

	s.logger.Info().
		Str("schedule", s.schedule).
		Dur("max_age", s.maxAge).
		Msg("Retention sweeper started")

	return nil
}

// Stop halts periodic sweeping. A sweep already in flight finishes.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron = nil
}

// SweepOnce deletes conversations idle for longer than the configured
// age and returns how many were removed. Messages go with their
// conversation through the cascade.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.maxAge)

	deleted, err := s.store.Conversations().DeleteIdleSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune conversations: %w", err)
	}

	if deleted > 0 {
		s.logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Pruned idle conversations")
	}

	if remaining, err := s.store.Conversations().Count(ctx); err == nil {
		observability.SetActiveConversations(remaining)
	}

	return deleted, nil
}
