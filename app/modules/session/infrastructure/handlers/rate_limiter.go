package sessionhandlers

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle session entry is eligible for cleanup.
	maxIdleAge = 30 * time.Minute
)

type sessionEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SessionRateLimiter throttles expensive requests per session and prunes
// stale entries inline.
type SessionRateLimiter struct {
	sessions map[string]*sessionEntry
	mu       sync.Mutex
	r        rate.Limit
	b        int
	now      func() time.Time
}

// NewSessionRateLimiter creates a limiter allowing r events per second with
// burst b for each session.
func NewSessionRateLimiter(r rate.Limit, b int) *SessionRateLimiter {
	return &SessionRateLimiter{
		sessions: make(map[string]*sessionEntry),
		r:        r,
		b:        b,
		now:      time.Now,
	}
}

// Allow reports whether the session may proceed now. A nil limiter allows
// everything.
func (l *SessionRateLimiter) Allow(sessionID string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	return l.getLimiter(sessionID, now).AllowN(now, 1)
}

func (l *SessionRateLimiter) getLimiter(sessionID string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.sessions) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range l.sessions {
			if e.lastSeen.Before(cutoff) {
				delete(l.sessions, k)
			}
		}
	}

	e, exists := l.sessions[sessionID]
	if !exists {
		e = &sessionEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.sessions[sessionID] = e
	}
	e.lastSeen = now

	return e.limiter
}
