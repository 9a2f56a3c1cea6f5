// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package guard

import (
	"context"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"sync"
	"time"

	"rivaas.dev/dispatch/router"
)

// Quota is the value of a rate limit field.
type Quota struct {
	Key       string
	Remaining int
}

// KeyFunc derives the rate limit key from a request.
type KeyFunc func(head *http.Request) string

// ClientIP keys requests by the host part of RemoteAddr.
func ClientIP(head *http.Request) string {
	host, _, err := net.SplitHostPort(head.RemoteAddr)
	if err != nil {
		return head.RemoteAddr
	}

	return host
}

// HeaderKey keys requests by the value of the named header, for example an
// API key.
func HeaderKey(name string) KeyFunc {
	return func(head *http.Request) string {
		return head.Header.Get(name)
	}
}

// bucket is the token bucket of one key.
type bucket struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// Limiter is a token bucket rate limiting guard. Each key starts with burst
// tokens and regains rate tokens per second. Rejections are 429 with a
// Retry-After header.
//
// A Limiter runs a cleanup goroutine; call Close when done with it.
type Limiter struct {
	rate    int
	burst   int
	key     KeyFunc
	now     func() time.Time
	buckets map[string]*bucket
	mu      sync.RWMutex

	cleanupEvery time.Duration
	cleanup      *time.Ticker
	stopCleanup  chan struct{}
	closeOnce    sync.Once
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithKey sets how requests are grouped. Default: ClientIP.
func WithKey(fn KeyFunc) LimiterOption {
	return func(l *Limiter) {
		l.key = fn
	}
}

// WithCleanupInterval sets how often idle buckets are dropped. Default: 5m.
func WithCleanupInterval(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		if d > 0 {
			l.cleanupEvery = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		l.now = now
	}
}

// RateLimit returns a Limiter allowing rate requests per second per key,
// with bursts of up to burst requests.
//
//	limiter := guard.RateLimit(10, 20, guard.WithKey(guard.HeaderKey("X-API-Key")))
//	defer limiter.Close()
func RateLimit(rate, burst int, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		rate:         max(rate, 1),
		burst:        max(burst, 1),
		key:          ClientIP,
		now:          time.Now,
		buckets:      make(map[string]*bucket),
		cleanupEvery: 5 * time.Minute,
		stopCleanup:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.cleanup = time.NewTicker(l.cleanupEvery)
	go l.cleanupLoop()

	return l
}

// Context implements router.Guard.
func (l *Limiter) Context() reflect.Type {
	return reflect.TypeFor[router.NoContext]()
}

// Check implements router.Guard.
func (l *Limiter) Check(_ context.Context, head *http.Request, _ any) (any, error) {
	key := l.key(head)
	allowed, remaining, retryAfter := l.Allow(key, l.now())
	if !allowed {
		d := deny(http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
		d.Header.Set("Retry-After", strconv.Itoa(retryAfter))
		d.Header.Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		d.Header.Set("X-RateLimit-Remaining", "0")

		return nil, d
	}

	return Quota{Key: key, Remaining: remaining}, nil
}

// Allow takes a token for key. It reports whether one was available, how
// many remain, and the seconds until the next token.
func (l *Limiter) Allow(key string, now time.Time) (allowed bool, remaining, retryAfter int) {
	l.mu.RLock()
	b, exists := l.buckets[key]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		b, exists = l.buckets[key]
		if !exists {
			b = &bucket{tokens: float64(l.burst), lastUpdate: now}
			l.buckets[key] = b
		}
		l.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastUpdate).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*float64(l.rate), float64(l.burst))
		b.lastUpdate = now
	}

	if b.tokens >= 1.0 {
		b.tokens--
		return true, int(b.tokens), 1
	}

	wait := time.Duration((1.0 - b.tokens) / float64(l.rate) * float64(time.Second))

	return false, 0, max(int((wait+time.Second-1)/time.Second), 1)
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		l.cleanup.Stop()
		close(l.stopCleanup)
	})
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanup.C:
			l.sweep(l.now().Add(-time.Hour))
		case <-l.stopCleanup:
			return
		}
	}
}

// sweep drops buckets untouched since cutoff.
func (l *Limiter) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		b.mu.Lock()
		if b.lastUpdate.Before(cutoff) {
			delete(l.buckets, key)
		}
		b.mu.Unlock()
	}
}
