// Package scheduler repeats a job on a cron schedule until its context ends.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/badmintongame/tournament-sync/internal/logger"
)

// Job is one scheduled run. The context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

type Scheduler struct {
	c    *cron.Cron
	spec string
	ctx  context.Context
	stop context.CancelFunc
}

// New parses spec (standard 5-field cron, or descriptors such as "@hourly"
// and "@every 6h") and registers job. A tick that fires while the previous
// run is still going is skipped.
func New(spec string, job Job) (*Scheduler, error) {
	ctx, stop := context.WithCancel(context.Background())
	s := &Scheduler{
		c: cron.New(cron.WithChain(
			cron.Recover(cronLogger{}),
			cron.SkipIfStillRunning(cronLogger{}),
		)),
		spec: spec,
		ctx:  ctx,
		stop: stop,
	}

	_, err := s.c.AddFunc(spec, func() {
		logger.Info("scheduler tick", logger.Fields{"cron": spec})
		if err := job(s.ctx); err != nil {
			logger.Error("scheduled run failed", logger.Fields{"cron": spec}, err)
		}
	})
	if err != nil {
		stop()
		return nil, fmt.Errorf("parsing cron spec %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is done, then waits for a
// running job to return.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("starting scheduler", logger.Fields{"cron": s.spec})
	s.c.Start()

	<-ctx.Done()

	s.stop()
	<-s.c.Stop().Done()
	logger.Info("scheduler stopped", logger.Fields{"cron": s.spec})
}

// cronLogger routes cron's own messages through the package logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, fields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, fields(keysAndValues), err)
}

func fields(keysAndValues []interface{}) logger.Fields {
	f := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
