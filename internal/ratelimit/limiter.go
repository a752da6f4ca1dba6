// Package ratelimit paces requests to remote model APIs.
package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Service identifies a remote API for rate limiting purposes.
type Service string

const (
	// ServiceOpenAIEmbeddings is the OpenAI embeddings endpoint.
	ServiceOpenAIEmbeddings Service = "openai-embeddings"
	// ServiceOpenAIChat is the OpenAI chat completions endpoint.
	ServiceOpenAIChat Service = "openai-chat"
	// ServiceOllama is a local Ollama instance.
	ServiceOllama Service = "ollama"
)

// DefaultRetryAfter is the pause applied after a 429 without a Retry-After header.
const DefaultRetryAfter = 20 * time.Second

// Config holds rate limiting configuration for a service.
type Config struct {
	// RequestsPerSecond is the sustained rate limit. Zero disables limiting.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// Defaults are conservative per-service limits, well under published tier-1 quotas.
var Defaults = map[Service]Config{
	ServiceOpenAIEmbeddings: {RequestsPerSecond: 3.0, BurstSize: 3},
	ServiceOpenAIChat:       {RequestsPerSecond: 1.0, BurstSize: 2},
	ServiceOllama:           {RequestsPerSecond: 0},
}

// Limiter is a token bucket with an additional pause window set after the
// remote side reports a rate limit error.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter with the default configuration for service.
func New(service Service) *Limiter {
	cfg, ok := Defaults[service]
	if !ok {
		cfg = Config{RequestsPerSecond: 1.0, BurstSize: 1}
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a limiter with custom configuration.
func NewWithConfig(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any pause set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError pauses the limiter. Call this on a 429 response.
// A non-positive wait applies DefaultRetryAfter.
func (l *Limiter) RecordRateLimitError(wait time.Duration) {
	if wait <= 0 {
		wait = DefaultRetryAfter
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retryAt = time.Now().Add(wait)
}

// Allow reports whether a request can be made immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// ParseRetryAfter reads a Retry-After header value given in seconds.
// Unparseable or empty values return zero.
func ParseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
