package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// tickInterval is how often expired levels are advanced. Five seconds
// keeps the displayed clock within a blink of the wall clock without
// hammering the database.
const tickInterval = 5 * time.Second

// sweepInterval is how often abandoned tournaments are swept.
const sweepInterval = time.Hour

// StartScheduler runs the clock background jobs: the fast tick that
// advances expired levels and the hourly sweep that force-finishes
// stale tournaments. The returned scheduler should be shut down on
// server exit.
func StartScheduler(clocks *ClockService, log *zap.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(tickInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), tickInterval)
			defer cancel()
			clocks.AdvanceDue(ctx)
		}),
	); err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			clocks.SweepStale(ctx)
		}),
	); err != nil {
		return nil, err
	}

	sched.Start()
	log.Info("clock scheduler started",
		zap.Duration("tick", tickInterval),
		zap.Duration("sweep", sweepInterval))
	return sched, nil
}
