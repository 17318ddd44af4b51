package documents

import (
	"sync"
	"time"
)

// UploadLimiter is a sliding-window counter over upload attempts. It keeps an
// ascending list of attempt timestamps; attempts older than the window fall
// off the front. A rejected attempt is not recorded.
//
// The limiter itself is unsynchronized and belongs to a single actor; see
// UploadGate for the concurrent, per-actor wrapper used at the HTTP boundary.
type UploadLimiter struct {
	maxUploads int
	window     time.Duration
	now        func() time.Time
	timestamps []time.Time
}

// NewUploadLimiter constructs a limiter allowing maxUploads per rolling
// window. A nil now falls back to time.Now.
func NewUploadLimiter(maxUploads int, window time.Duration, now func() time.Time) *UploadLimiter {
	if now == nil {
		now = time.Now
	}
	return &UploadLimiter{
		maxUploads: maxUploads,
		window:     window,
		now:        now,
	}
}

// CanUpload records and allows the attempt unless the window is full.
func (l *UploadLimiter) CanUpload() bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	// The list is insertion-ordered, so expired entries are a prefix.
	for len(l.timestamps) > 0 && !l.timestamps[0].After(cutoff) {
		l.timestamps = l.timestamps[1:]
	}

	if len(l.timestamps) >= l.maxUploads {
		return false
	}
	l.timestamps = append(l.timestamps, now)
	return true
}

// UploadGate hands out one UploadLimiter per actor and serializes access so
// the gate can sit in front of concurrent HTTP handlers.
type UploadGate struct {
	mu         sync.Mutex
	limiters   map[string]*UploadLimiter
	maxUploads int
	window     time.Duration
	now        func() time.Time
}

// NewUploadGate constructs a gate creating per-actor limiters on demand.
func NewUploadGate(maxUploads int, window time.Duration, now func() time.Time) *UploadGate {
	if now == nil {
		now = time.Now
	}
	return &UploadGate{
		limiters:   make(map[string]*UploadLimiter),
		maxUploads: maxUploads,
		window:     window,
		now:        now,
	}
}

// Allow reports whether the actor may upload now, counting the attempt if so.
func (g *UploadGate) Allow(actor string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	limiter, ok := g.limiters[actor]
	if !ok {
		limiter = NewUploadLimiter(g.maxUploads, g.window, g.now)
		g.limiters[actor] = limiter
	}
	return limiter.CanUpload()
}

// RetryAfter is the wait hint returned with a rate-limited response.
func (g *UploadGate) RetryAfter() time.Duration {
	return g.window
}
