package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fekuna/omnipos-crm-service/internal/jobs"
	"github.com/fekuna/omnipos-crm-service/internal/scheduler"
	"github.com/fekuna/omnipos-crm-service/internal/tasks"
)

func NewWorkerCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the job scheduler and the task queue consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, opts)
		},
	}
}

func runWorker(ctx context.Context, opts *RootOptions) error {
	jc, log := opts.Config.Jobs, opts.Logger
	d := newDeps(opts)
	defer d.Close()

	registry := d.Jobs()
	sched := scheduler.New(log, nil)
	for _, e := range []struct{ spec, name string }{
		{jc.HeartbeatSpec, jobs.NameHeartbeat},
		{jc.LowStockSpec, jobs.NameLowStock},
		{jc.RemindersSpec, jobs.NameOrderReminders},
	} {
		if err := scheduleJob(sched, registry, e.spec, e.name); err != nil {
			return err
		}
	}

	queue := d.TaskQueue()
	consumer := d.TaskConsumer()
	if jc.ReportViaQueue && queue != nil {
		log.Info("Dispatching CRM report through the task queue", zap.String("topic", queue.Topic()))
		if err := sched.ScheduleEnqueue(jc.ReportSpec, jobs.NameCRMReport, queue); err != nil {
			return err
		}
	} else {
		if jc.ReportViaQueue {
			log.Warn("No Kafka brokers configured, running the CRM report in-process")
		}
		if err := scheduleJob(sched, registry, jc.ReportSpec, jobs.NameCRMReport); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Run(ctx)
		return nil
	})
	if consumer != nil {
		listener := tasks.NewTaskListener(consumer, registry, log)
		g.Go(func() error {
			listener.Start(ctx)
			return nil
		})
	}

	log.Info("Worker started", zap.Int("scheduled", sched.Len()), zap.Bool("task_listener", consumer != nil))
	return g.Wait()
}

func scheduleJob(s *scheduler.Scheduler, registry *jobs.Registry, spec, name string) error {
	job, ok := registry.Get(name)
	if !ok {
		return fmt.Errorf("job %s is not registered", name)
	}
	return s.Schedule(spec, job)
}
