/*
ratelimit implements per-client request limits for the chat endpoint: a
maximum number of requests per window, and a cooldown between consecutive
requests from the same client.
*/
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	rate "golang.org/x/time/rate"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Limiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	max      int
	window   time.Duration
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type client struct {
	limiter *rate.Limiter
	last    time.Time // last allowed request
	seen    time.Time // last request, allowed or not
}

type Opt func(*Limiter) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultMaxRequests = 10
	DefaultWindow      = 60 * time.Second
	DefaultCooldown    = 2 * time.Second
	DefaultMaxAge      = time.Hour
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a limiter allowing max requests per window for each client,
// with at least cooldown between two allowed requests
func New(max int, window, cooldown time.Duration, opts ...Opt) (*Limiter, error) {
	if max <= 0 {
		return nil, twin.ErrBadParameter.Withf("max requests %d", max)
	}
	if window <= 0 {
		return nil, twin.ErrBadParameter.Withf("window %v", window)
	}
	if cooldown < 0 {
		return nil, twin.ErrBadParameter.Withf("cooldown %v", cooldown)
	}

	l := &Limiter{
		clients:  make(map[string]*client),
		max:      max,
		window:   window,
		cooldown: cooldown,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithClock replaces the time source
func WithClock(now func() time.Time) Opt {
	return func(l *Limiter) error {
		if now == nil {
			return twin.ErrBadParameter.With("clock is nil")
		}
		l.now = now
		return nil
	}
}

func WithLogger(logger *slog.Logger) Opt {
	return func(l *Limiter) error {
		if logger == nil {
			return twin.ErrBadParameter.With("logger is nil")
		}
		l.logger = logger
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Allow returns true if the client identified by id may make a request
// now. Otherwise it returns a message for the user saying how long to wait.
func (l *Limiter) Allow(id string) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, exists := l.clients[id]
	if !exists {
		c = &client{
			limiter: rate.NewLimiter(rate.Limit(float64(l.max)/l.window.Seconds()), l.max),
		}
		l.clients[id] = c
	}
	c.seen = now

	// Cooldown between consecutive requests
	if !c.last.IsZero() {
		if elapsed := now.Sub(c.last); elapsed < l.cooldown {
			remaining := l.cooldown - elapsed
			return false, fmt.Sprintf("Please wait %.1f seconds before sending another message.", remaining.Seconds())
		}
	}

	// Requests per window
	r := c.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
		r.CancelAt(now)
		return false, fmt.Sprintf("Rate limit exceeded. Please try again in %d seconds.", int(delay.Seconds())+1)
	}

	c.last = now
	return true, ""
}

// Limits returns the configured limits
func (l *Limiter) Limits() (int, time.Duration, time.Duration) {
	return l.max, l.window, l.cooldown
}

// Len returns the number of clients being tracked
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Cleanup forgets clients which have not made a request for maxAge, and
// returns the number removed
func (l *Limiter) Cleanup(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	now := l.now()
	for id, c := range l.clients {
		if now.Sub(c.seen) > maxAge {
			delete(l.clients, id)
			n++
		}
	}
	return n
}

// Run calls Cleanup every interval until the context is cancelled
func (l *Limiter) Run(ctx context.Context, interval, maxAge time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := l.Cleanup(maxAge); n > 0 {
				l.logger.Debug("rate limiter cleanup", "removed", n, "clients", l.Len())
			}
		case <-ctx.Done():
			return nil
		}
	}
}
