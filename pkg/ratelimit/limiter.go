package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	"github.com/sirupsen/logrus"
)

// Category keys the fixed limit table.
type Category string

const (
	CategoryIP             Category = "ip"
	CategorySession        Category = "session"
	CategoryDebateCreation Category = "debate_creation"
	CategoryAPI            Category = "api"
)

type Limit struct {
	MaxRequests int
	Window      time.Duration
}

var defaultLimits = map[Category]Limit{
	CategoryIP:             {MaxRequests: 100, Window: time.Minute},
	CategorySession:        {MaxRequests: 30, Window: time.Minute},
	CategoryDebateCreation: {MaxRequests: 10, Window: time.Hour},
	CategoryAPI:            {MaxRequests: 300, Window: time.Minute},
}

// Result is the verdict for one increment. RetryAfterMs is only set when
// the request was denied.
type Result struct {
	Allowed      bool      `json:"allowed"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	ResetAt      time.Time `json:"reset_at"`
	RetryAfterMs int64     `json:"retry_after_ms"`
}

type Opts struct {
	TimeProvider func() time.Time
	Limits       map[Category]Limit
	MaxActive    int
}

// Limiter applies fixed-window counters per identifier and category, plus a
// ceiling on concurrently-open debates per session.
type Limiter struct {
	store        Store
	limits       map[Category]Limit
	logger       *logrus.Logger
	timeProvider func() time.Time

	mu            sync.Mutex
	activeDebates map[string]map[string]struct{}
	maxActive     int
}

func NewLimiter(store Store, logger *logrus.Logger, opts *Opts) *Limiter {
	limiter := &Limiter{
		store:         store,
		limits:        defaultLimits,
		logger:        logger,
		timeProvider:  time.Now,
		activeDebates: make(map[string]map[string]struct{}),
		maxActive:     common.MaxActiveDebatesPerSession,
	}
	if opts != nil {
		if opts.TimeProvider != nil {
			limiter.timeProvider = opts.TimeProvider
		}
		if opts.Limits != nil {
			limiter.limits = opts.Limits
		}
		if opts.MaxActive > 0 {
			limiter.maxActive = opts.MaxActive
		}
	}
	return limiter
}

// Check atomically counts one request against the identifier's window. A
// store failure fails open: rate limiting degrades before it blocks
// legitimate traffic.
func (l *Limiter) Check(ctx context.Context, identifier string, category Category) (*Result, error) {
	limit, ok := l.limits[category]
	if !ok {
		return nil, fmt.Errorf("unknown rate limit category: %s", category)
	}

	key := fmt.Sprintf("%s:%s", category, identifier)
	count, resetAt, err := l.store.Increment(ctx, key, limit.Window)
	if err != nil {
		l.logger.WithError(err).WithField("category", category).Error("rate limit store unavailable, allowing request")
		return &Result{
			Allowed:   true,
			Limit:     limit.MaxRequests,
			Remaining: limit.MaxRequests,
			ResetAt:   l.timeProvider().Add(limit.Window),
		}, nil
	}

	result := &Result{
		Allowed: count <= int64(limit.MaxRequests),
		Limit:   limit.MaxRequests,
		ResetAt: resetAt,
	}
	if remaining := int64(limit.MaxRequests) - count; remaining > 0 {
		result.Remaining = int(remaining)
	}
	if !result.Allowed {
		if retryAfter := resetAt.Sub(l.timeProvider()); retryAfter > 0 {
			result.RetryAfterMs = retryAfter.Milliseconds()
		} else {
			result.RetryAfterMs = 1
		}
	}
	return result, nil
}

// TrackActiveDebate registers a long-running debate against the session's
// concurrency ceiling. Re-adding an already-tracked id is idempotent and
// does not count twice.
func (l *Limiter) TrackActiveDebate(sessionID, debateID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	debates, ok := l.activeDebates[sessionID]
	if !ok {
		debates = make(map[string]struct{})
		l.activeDebates[sessionID] = debates
	}
	if _, tracked := debates[debateID]; tracked {
		return nil
	}
	if len(debates) >= l.maxActive {
		return fmt.Errorf("session %s already has %d active debates", sessionID, len(debates))
	}
	debates[debateID] = struct{}{}
	return nil
}

func (l *Limiter) ReleaseActiveDebate(sessionID, debateID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if debates, ok := l.activeDebates[sessionID]; ok {
		delete(debates, debateID)
		if len(debates) == 0 {
			delete(l.activeDebates, sessionID)
		}
	}
}

// ActiveDebates reports how many debates the session currently holds.
func (l *Limiter) ActiveDebates(sessionID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.activeDebates[sessionID])
}
