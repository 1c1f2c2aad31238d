package lobby

import (
	"sync"

	"golang.org/x/time/rate"
)

// SessionLimiter throttles how often a single session may call
// RegisterPlayer, guarding admission against a client hammering the socket
// with register_client frames.
type SessionLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// NewSessionLimiter creates a limiter allowing requestsPerMin admission
// attempts per session, per minute.
func NewSessionLimiter(requestsPerMin int) *SessionLimiter {
	return &SessionLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    max(requestsPerMin/10, 3),
	}
}

// Allow reports whether sessionID may attempt admission right now.
func (l *SessionLimiter) Allow(sessionID string) bool {
	return l.getLimiter(sessionID).Allow()
}

func (l *SessionLimiter) getLimiter(sessionID string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[sessionID]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.limiters[sessionID]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.rate, l.burst)
	l.limiters[sessionID] = limiter
	return limiter
}

// Forget drops the limiter for sessionID, called when a session disconnects.
func (l *SessionLimiter) Forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, sessionID)
}
