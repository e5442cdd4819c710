package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config carries the limits the CRM jobs tune. A zero Timeout leaves the
// request bounded only by its context.
type Config struct {
	Timeout     time.Duration
	DialTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:     10 * time.Second,
		DialTimeout: 5 * time.Second,
	}
}

// New builds a client whose overall and response-header limits both follow cfg.Timeout.
func New(cfg Config) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: 30 * time.Second}).DialContext
	tr.ResponseHeaderTimeout = cfg.Timeout

	return &http.Client{Transport: tr, Timeout: cfg.Timeout}
}
