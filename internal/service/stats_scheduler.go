package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/greencycle/greencycle-go/internal/metrics"
)

// StatsScheduler periodically refreshes gauges that need a store round trip.
type StatsScheduler struct {
	users    UserStore
	interval time.Duration
	log      zerolog.Logger
	sched    gocron.Scheduler
}

func NewStatsScheduler(users UserStore, interval time.Duration, log zerolog.Logger) *StatsScheduler {
	return &StatsScheduler{users: users, interval: interval, log: log}
}

// Start registers the refresh job and starts the scheduler. The job runs
// once immediately, then every interval.
func (s *StatsScheduler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.Refresh(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}

	s.sched = sched
	sched.Start()
	s.log.Info().Dur("interval", s.interval).Msg("stats-scheduler: started")
	return nil
}

// Refresh updates the user-count gauge once.
func (s *StatsScheduler) Refresh(ctx context.Context) {
	n, err := s.users.Count(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("stats-scheduler: count users failed")
		return
	}
	metrics.UsersTotal.Set(float64(n))
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *StatsScheduler) Stop() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}
