// Package scheduler runs jobs on cron specs inside the worker process.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/jobs"
	"github.com/fekuna/omnipos-crm-service/internal/tasks"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

type Scheduler struct {
	cron *cron.Cron
	log  logger.ZapLogger

	mu  sync.RWMutex
	ctx context.Context
}

// New builds a scheduler using standard five-field specs. An invocation still
// running when its next tick fires is skipped rather than stacked.
func New(log logger.ZapLogger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
		ctx: context.Background(),
	}
}

// Schedule runs job in-process on every tick of spec.
func (s *Scheduler) Schedule(spec string, job jobs.Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug("Running scheduled job", zap.String("job", job.Name()))
		job.Run(s.runContext())
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}
	s.log.Info("Scheduled job", zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

// ScheduleEnqueue publishes task to the queue on every tick instead of running it here.
func (s *Scheduler) ScheduleEnqueue(spec, task string, pub tasks.Publisher) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := tasks.Enqueue(s.runContext(), pub, task); err != nil {
			s.log.Error("Failed to enqueue task", zap.String("task", task), zap.Error(err))
			return
		}
		s.log.Info("Enqueued task", zap.String("task", task))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", task, spec, err)
	}
	s.log.Info("Scheduled task", zap.String("task", task), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Run starts the cron loop and blocks until ctx is done, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	<-ctx.Done()
	s.log.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// cronLogger adapts ZapLogger to cron.Logger.
type cronLogger struct {
	log logger.ZapLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(fields(keysAndValues), zap.Error(err))...)
}

func fields(kv []interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, zap.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
