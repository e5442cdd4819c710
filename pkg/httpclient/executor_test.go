package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exec := NewExecutor(WithTimeout(20 * time.Millisecond))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := exec.Do(context.Background(), req)
	require.Error(t, err)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestExecutorReturnsNon2xxBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := NewExecutor().Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.Equal(t, "upstream down", string(resp.Body))
}

func TestWithTimeoutAppliesToClient(t *testing.T) {
	tests := []struct {
		name string
		opts []ExecutorOption
		want time.Duration
	}{
		{"default", nil, 10 * time.Second},
		{"longer than default", []ExecutorOption{WithTimeout(45 * time.Second)}, 45 * time.Second},
		{"disabled", []ExecutorOption{WithTimeout(0)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewExecutor(tt.opts...)

			assert.Equal(t, tt.want, exec.timeout)
			assert.Equal(t, tt.want, exec.client.Timeout)
			tr, ok := exec.client.Transport.(*http.Transport)
			require.True(t, ok)
			assert.Equal(t, tt.want, tr.ResponseHeaderTimeout)
		})
	}
}

func TestExecutorHonoursConfiguredTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := NewExecutor(WithTimeout(100 * time.Millisecond)).Do(context.Background(), req)
	require.Error(t, err)
	assert.Zero(t, resp.Status)

	resp, err = NewExecutor(WithTimeout(2 * time.Second)).Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}
