// Package jobs holds the scheduled CRM jobs. Each job talks to the public
// GraphQL endpoint and appends a plain-text entry to its own log file.
// A job never returns an error: every outcome ends up in its log.
package jobs

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

// errEmptyResponse marks a 2xx reply whose data is null or lacks the requested field.
var errEmptyResponse = errors.New("empty response")

const (
	NameHeartbeat      = "heartbeat"
	NameLowStock       = "low_stock"
	NameOrderReminders = "order_reminders"
	NameCRMReport      = "generate_crm_report"
)

const (
	stampLayout     = "2006-01-02 15:04:05"
	heartbeatLayout = "02/01/2006-15:04:05"
)

// GraphQL is satisfied by *crmclient.Client.
type GraphQL interface {
	Execute(ctx context.Context, query string, vars map[string]any, out any) error
}

type Sink interface {
	Append(entry string) error
}

type Job interface {
	Name() string
	Run(ctx context.Context)
}

type Option func(*base)

// WithClock replaces time.Now for log timestamps and date windows.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithTimeout bounds a single run. Zero leaves the caller's context untouched.
func WithTimeout(d time.Duration) Option {
	return func(b *base) { b.timeout = d }
}

type base struct {
	client  GraphQL
	sink    Sink
	log     logger.ZapLogger
	now     func() time.Time
	timeout time.Duration
}

func newBase(name string, client GraphQL, sink Sink, log logger.ZapLogger, opts []Option) base {
	b := base{
		client: client,
		sink:   sink,
		log:    log.With(zap.String("job", name)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *base) write(entry string) {
	if err := b.sink.Append(entry); err != nil {
		b.log.Error("Failed to append job log", zap.Error(err))
	}
}

// Registry looks jobs up by name for the scheduler, the task listener and the CLI.
type Registry struct {
	jobs map[string]Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{jobs: make(map[string]Job, len(jobs))}
	for _, j := range jobs {
		r.jobs[j.Name()] = j
	}
	return r
}

func (r *Registry) Get(name string) (Job, bool) {
	j, ok := r.jobs[name]
	return j, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for n := range r.jobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
