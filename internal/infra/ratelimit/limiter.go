// Package ratelimit provides the minimum-interval gate placed in front of
// the MusicBrainz API.
package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// MinInterval is the smallest interval the gate accepts.
// MusicBrainz asks for no more than one request per second.
const MinInterval = time.Second

// Limiter guarantees that no two dispatches are less than interval apart,
// across every caller sharing it. Waiting callers pass the gate one at a time.
type Limiter struct {
	interval time.Duration
	gate     chan struct{}
	last     time.Time
}

// New creates a limiter. Intervals below MinInterval are raised to it.
func New(interval time.Duration) *Limiter {
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Limiter{
		interval: interval,
		gate:     make(chan struct{}, 1),
	}
}

// Interval returns the enforced minimum interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquire suspends the caller until a dispatch is allowed and records the
// dispatch time before returning. The caller must send its request right away.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.gate <- struct{}{}:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for rate limit gate")
	}
	defer func() { <-l.gate }()

	if !l.last.IsZero() {
		if wait := l.interval - time.Since(l.last); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "waiting for rate limit interval")
			}
		}
	}

	l.last = time.Now()
	return nil
}

// Transport is an http.RoundTripper that stamps the identifying
// User-Agent on every request.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if t.UserAgent != "" {
		out.Header.Set("User-Agent", t.UserAgent)
	}
	out.Header.Set("Accept", "application/json")

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}

// Fetcher issues rate-limited GET requests.
type Fetcher struct {
	limiter *Limiter
	client  *http.Client
}

// NewFetcher creates a fetcher whose requests all pass through limiter.
// The timeout covers a single request and starts once the limiter lets it go.
func NewFetcher(limiter *Limiter, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		limiter: limiter,
		client: &http.Client{
			Timeout:   timeout,
			Transport: &Transport{UserAgent: userAgent},
		},
	}
}

// Fetch waits for the limiter, dispatches a GET request and returns the raw
// response. Network errors propagate to the caller; the caller closes the body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if err := f.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	return resp, nil
}
