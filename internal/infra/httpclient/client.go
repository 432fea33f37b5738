package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config tunes the transport. Lookups are serialized by the pacer, so the
// pool is kept small.
type Config struct {
	// Timeout covers the whole exchange including reading the body.
	Timeout time.Duration

	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSHandshake    time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration

	MaxIdleConnsPerHost int

	// UserAgent identifies the tool to the service; empty keeps Go's default.
	UserAgent string
	// Accept is sent when the request does not set its own.
	Accept string
}

func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		DialTimeout:         5 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshake:        5 * time.Second,
		ResponseHeader:      20 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 2,
		UserAgent:           "kcatflux",
		Accept:              "application/json, application/xml;q=0.9, */*;q=0.1",
	}
}

// New returns an *http.Client for the directory service.
func New(cfg Config) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: cfg.KeepAlive}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxIdleConnsPerHost * 2,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}

	defaults := map[string]string{}
	if cfg.UserAgent != "" {
		defaults["User-Agent"] = cfg.UserAgent
	}
	if cfg.Accept != "" {
		defaults["Accept"] = cfg.Accept
	}
	if len(defaults) > 0 {
		rt = defaultHeaders{next: rt, headers: defaults}
	}

	return &http.Client{Transport: rt, Timeout: cfg.Timeout}
}

// defaultHeaders fills headers the request left empty. The request is cloned,
// never modified in place.
type defaultHeaders struct {
	next    http.RoundTripper
	headers map[string]string
}

func (d defaultHeaders) RoundTrip(req *http.Request) (*http.Response, error) {
	var r *http.Request
	for k, v := range d.headers {
		if req.Header.Get(k) != "" {
			continue
		}
		if r == nil {
			r = req.Clone(req.Context())
		}
		r.Header.Set(k, v)
	}
	if r == nil {
		r = req
	}
	return d.next.RoundTrip(r)
}
