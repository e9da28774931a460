package ratelimit_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	// Packages
	ratelimit "github.com/dilettacal/digital-twin/pkg/ratelimit"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

// clock is a settable time source
type clock struct {
	t time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time         { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func Test_Limiter_001(t *testing.T) {
	// Cooldown between consecutive requests
	assert := assert.New(t)
	clock := newClock()
	limiter, err := ratelimit.New(10, time.Minute, 2*time.Second, ratelimit.WithClock(clock.now))
	require.NoError(t, err)

	ok, msg := limiter.Allow("a")
	assert.True(ok)
	assert.Empty(msg)

	clock.advance(500 * time.Millisecond)
	ok, msg = limiter.Allow("a")
	assert.False(ok)
	assert.Equal("Please wait 1.5 seconds before sending another message.", msg)

	// Other clients are not affected
	ok, _ = limiter.Allow("b")
	assert.True(ok)

	clock.advance(1500 * time.Millisecond)
	ok, _ = limiter.Allow("a")
	assert.True(ok)
}

func Test_Limiter_002(t *testing.T) {
	// Requests per window
	assert := assert.New(t)
	clock := newClock()
	limiter, err := ratelimit.New(3, time.Minute, 0, ratelimit.WithClock(clock.now))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, _ := limiter.Allow("a")
		assert.True(ok, "request %d", i)
	}
	ok, msg := limiter.Allow("a")
	assert.False(ok)
	assert.Regexp(`^Rate limit exceeded\. Please try again in \d+ seconds\.$`, msg)

	// One request is refilled every window/max
	clock.advance(21 * time.Second)
	ok, _ = limiter.Allow("a")
	assert.True(ok)
	ok, _ = limiter.Allow("a")
	assert.False(ok)
}

func Test_Limiter_003(t *testing.T) {
	// Denied requests do not consume the allowance
	assert := assert.New(t)
	clock := newClock()
	limiter, err := ratelimit.New(1, time.Minute, 0, ratelimit.WithClock(clock.now))
	require.NoError(t, err)

	ok, _ := limiter.Allow("a")
	assert.True(ok)
	for i := 0; i < 5; i++ {
		ok, _ = limiter.Allow("a")
		assert.False(ok)
	}
	clock.advance(61 * time.Second)
	ok, _ = limiter.Allow("a")
	assert.True(ok)
}

func Test_Limiter_004(t *testing.T) {
	// Cleanup forgets idle clients
	assert := assert.New(t)
	clock := newClock()
	limiter, err := ratelimit.New(10, time.Minute, time.Second, ratelimit.WithClock(clock.now))
	require.NoError(t, err)

	limiter.Allow("a")
	clock.advance(30 * time.Minute)
	limiter.Allow("b")
	assert.Equal(2, limiter.Len())

	clock.advance(45 * time.Minute)
	assert.Equal(1, limiter.Cleanup(time.Hour))
	assert.Equal(1, limiter.Len())
}

func Test_Limiter_005(t *testing.T) {
	// Run returns when cancelled
	assert := assert.New(t)
	limiter, err := ratelimit.New(10, time.Minute, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(limiter.Run(ctx, 10*time.Millisecond, time.Hour))
}

func Test_Limiter_006(t *testing.T) {
	assert := assert.New(t)
	_, err := ratelimit.New(0, time.Minute, time.Second)
	assert.Error(err)
	_, err = ratelimit.New(1, 0, time.Second)
	assert.Error(err)
	_, err = ratelimit.New(1, time.Minute, -time.Second)
	assert.Error(err)
}

func Test_Identifier_001(t *testing.T) {
	assert := assert.New(t)
	header := http.Header{}
	assert.Equal("anonymous", ratelimit.ClientIdentifier(header, ""))

	header.Set("CF-Connecting-IP", "9.9.9.9")
	assert.Equal("ip:9.9.9.9", ratelimit.ClientIdentifier(header, ""))

	header.Set("X-Real-IP", "5.6.7.8")
	assert.Equal("ip:5.6.7.8", ratelimit.ClientIdentifier(header, ""))

	header.Set("X-Forwarded-For", " 1.2.3.4 , 10.0.0.1")
	assert.Equal("ip:1.2.3.4", ratelimit.ClientIdentifier(header, ""))

	assert.Equal("session:abc", ratelimit.ClientIdentifier(header, "abc"))
}
