package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-crm-service/internal/jobs"
	"github.com/fekuna/omnipos-crm-service/internal/tasks"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

type countingJob struct {
	runs int32
	ctxs chan context.Context
}

func (j *countingJob) Name() string { return jobs.NameHeartbeat }

func (j *countingJob) Run(ctx context.Context) {
	atomic.AddInt32(&j.runs, 1)
	select {
	case j.ctxs <- ctx:
	default:
	}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []tasks.Message
}

func (p *recordingPublisher) PublishJSON(_ context.Context, _ string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, v.(tasks.Message))
	return nil
}

func (p *recordingPublisher) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

func TestSchedule_InvalidSpec(t *testing.T) {
	s := New(logger.NewNop(), time.UTC)

	err := s.Schedule("every tuesday", &countingJob{})
	assert.ErrorContains(t, err, "schedule heartbeat")
	assert.Error(t, s.ScheduleEnqueue("61 * * * *", jobs.NameCRMReport, &recordingPublisher{}))
	assert.Equal(t, 0, s.Len())
}

func TestSchedule_StandardSpecs(t *testing.T) {
	s := New(logger.NewNop(), time.UTC)

	for _, spec := range []string{"*/5 * * * *", "0 */12 * * *", "0 8 * * *", "0 6 * * 1"} {
		require.NoError(t, s.Schedule(spec, &countingJob{}))
	}
	assert.Equal(t, 4, s.Len())
}

func TestRun_FiresJobsAndEnqueues(t *testing.T) {
	s := New(logger.NewNop(), time.UTC)
	job := &countingJob{ctxs: make(chan context.Context, 1)}
	pub := &recordingPublisher{}
	require.NoError(t, s.Schedule("@every 1s", job))
	require.NoError(t, s.ScheduleEnqueue("@every 1s", jobs.NameCRMReport, pub))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) > 0 && pub.len() > 0
	}, 5*time.Second, 20*time.Millisecond)

	runCtx := <-job.ctxs
	cancel()
	<-done

	assert.ErrorIs(t, runCtx.Err(), context.Canceled)
	pub.mu.Lock()
	assert.Equal(t, jobs.NameCRMReport, pub.msgs[0].Task)
	pub.mu.Unlock()
}
