package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Response is a fully read reply. Status is zero when the request never got one.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Duration time.Duration
}

type Executor struct {
	client  *http.Client
	timeout time.Duration
}

type ExecutorOption func(*Config)

// WithTimeout bounds each request, including the wait for response headers.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(c *Config) { c.Timeout = d }
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor{client: New(cfg), timeout: cfg.Timeout}
}

// Do sends req and reads the whole body. Non-2xx statuses are not errors here.
func (e *Executor) Do(ctx context.Context, req *http.Request) (Response, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.client.Do(req.WithContext(ctx))
	if err != nil {
		return Response{Duration: time.Since(start)}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	out := Response{Status: resp.StatusCode, Header: resp.Header, Duration: time.Since(start)}
	if err != nil {
		return out, err
	}
	out.Body = body
	return out, nil
}
