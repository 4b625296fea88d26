package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Window is the fixed interval over which a provider's request budget is
// tracked before resetting.
const Window = 60 * time.Second

// window tracks one provider's current admission count. Owned exclusively
// by the Limiter; rollover is computed lazily at admission-check time, so
// there is no background sweep.
type window struct {
	count int
	start time.Time
}

// WindowSnapshot is a read-only view of one provider's current window,
// exposed for status introspection.
type WindowSnapshot struct {
	Provider    string    `json:"provider"`
	Count       int       `json:"count"`
	Limit       int       `json:"limit"`
	WindowStart time.Time `json:"window_start"`
}

// Limiter enforces per-provider fixed-window admission limits. Windows are
// independent per provider: a burst on one never affects another's budget.
//
// This is deliberately a coarse fixed-window limiter, not a sliding window
// or token bucket: it permits up to 2x the limit across a window boundary in
// the worst case, trading smoothing precision for O(1) state per provider.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limits  map[string]int
	logger  *zap.Logger
}

// NewLimiter creates a limiter with per-provider requests-per-window limits.
// A limit of zero or less means unlimited admission (attempts are still
// counted for introspection).
func NewLimiter(limits map[string]int, logger *zap.Logger) *Limiter {
	copied := make(map[string]int, len(limits))
	for name, limit := range limits {
		copied[name] = limit
	}
	return &Limiter{
		windows: make(map[string]*window),
		limits:  copied,
		logger:  logger,
	}
}

// TryAdmit atomically checks and consumes one admission slot for the
// provider at time now. If the current window is stale it is reset first;
// then the request is admitted iff the count is below the limit. Rejection
// mutates nothing. Check-then-increment happens under one lock, so two
// concurrent callers can never both slip past the limit.
//
// A clock that appears to run backwards (now before the window start) is
// treated as "window not yet stale": the window is kept as-is, failing safe
// toward not admitting unboundedly.
func (l *Limiter) TryAdmit(provider string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[provider]
	if !exists {
		w = &window{start: now}
		l.windows[provider] = w
	}

	if now.Sub(w.start) >= Window {
		w.count = 0
		w.start = now
	}

	limit := l.limits[provider]
	if limit > 0 && w.count >= limit {
		l.logger.Debug("admission rejected",
			zap.String("provider", provider),
			zap.Int("count", w.count),
			zap.Int("limit", limit))
		return false
	}

	w.count++
	return true
}

// Snapshot returns the provider's effective window count as of now, without
// mutating any state. A stale window reports zero. The second return value
// is false when the provider has never been admitted against.
func (l *Limiter) Snapshot(provider string, now time.Time) (WindowSnapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := WindowSnapshot{
		Provider: provider,
		Limit:    l.limits[provider],
	}

	w, exists := l.windows[provider]
	if !exists {
		return snap, false
	}

	snap.WindowStart = w.start
	if now.Sub(w.start) < Window {
		snap.Count = w.count
	}
	return snap, true
}
