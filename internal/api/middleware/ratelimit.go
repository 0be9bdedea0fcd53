package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL is how long an IP's limiter survives without traffic
	// before the sweep drops it. Long enough that a refilling limiter is
	// never reset mid-backoff.
	limiterIdleTTL = 10 * time.Minute
	// limiterSweepEvery bounds how often a request pays for the sweep.
	limiterSweepEvery = time.Minute
)

// ipLimiters tracks one token bucket per client IP and periodically
// drops buckets for IPs that have gone quiet, so the map stays bounded
// by recent traffic rather than growing for the life of the process.
type ipLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	entries   map[string]*ipLimiterEntry
	lastSweep time.Time
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiters(rps rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{
		rps:     rps,
		burst:   burst,
		entries: make(map[string]*ipLimiterEntry),
	}
}

func (l *ipLimiters) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweepLocked(now)
	}

	entry, ok := l.entries[ip]
	if !ok {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func (l *ipLimiters) sweepLocked(now time.Time) {
	for ip, entry := range l.entries {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.entries, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit throttles requests per client IP. Used on the auth endpoints
// to slow down credential stuffing.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	limiters := newIPLimiters(rps, burst)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP(), time.Now()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
