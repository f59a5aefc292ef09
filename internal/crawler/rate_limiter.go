package crawler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces page fetches per host. With concurrent workers the
// configured inter-page delay becomes a per-host rate rather than a
// global sleep, so two hosts (baseline and upgraded) are paced
// independently.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	delay    time.Duration
}

// NewRateLimiter creates a limiter enforcing one fetch per delay per
// host. A zero delay disables pacing.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until a fetch of urlStr is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return err
	}
	return r.hostLimiter(u.Host).Wait(ctx)
}

// hostLimiter gets or creates the limiter for a host.
func (r *RateLimiter) hostLimiter(host string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[host]
	r.mu.RUnlock()
	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another worker may have created it in the window above.
	if limiter, exists := r.limiters[host]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Every(r.delay), 1)
	r.limiters[host] = limiter
	return limiter
}
