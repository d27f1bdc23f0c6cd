package resilience

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiterConfig configures the attempt limiter.
type AttemptLimiterConfig struct {
	// Every is the interval at which one attempt is restored to a key.
	// Default: 1 second
	Every time.Duration

	// Burst is the number of attempts a fresh key may make at once.
	// Default: 5
	Burst int

	// IdleTTL drops a key's bucket after this long without attempts.
	// Default: 10 minutes
	IdleTTL time.Duration

	// MaxKeys bounds the number of tracked keys. When full, idle buckets are
	// swept; if none are idle, new keys share a single overflow bucket.
	// Default: 10000
	MaxKeys int
}

// AttemptLimiter keeps one token bucket per key.
type AttemptLimiter struct {
	config AttemptLimiterConfig
	now    func() time.Time

	mu       sync.Mutex
	buckets  map[string]*bucket
	overflow *rate.Limiter
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewAttemptLimiter creates a limiter with defaults applied.
func NewAttemptLimiter(config AttemptLimiterConfig) *AttemptLimiter {
	if config.Every <= 0 {
		config.Every = time.Second
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	if config.MaxKeys <= 0 {
		config.MaxKeys = 10000
	}

	return &AttemptLimiter{
		config:   config,
		now:      time.Now,
		buckets:  make(map[string]*bucket),
		overflow: rate.NewLimiter(rate.Every(config.Every), config.Burst),
	}
}

// Allow reports whether key may make an attempt now, consuming a token if so.
func (l *AttemptLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	lim := l.limiterLocked(key, now)
	l.mu.Unlock()

	return lim.AllowN(now, 1)
}

// Tokens returns the attempts currently available to key.
func (l *AttemptLimiter) Tokens(key string) float64 {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	l.mu.Unlock()

	if !ok {
		return float64(l.config.Burst)
	}
	return b.limiter.TokensAt(now)
}

// Reset forgets key, restoring its full burst. Hosts call it after a
// successful login.
func (l *AttemptLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *AttemptLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *AttemptLimiter) limiterLocked(key string, now time.Time) *rate.Limiter {
	if b, ok := l.buckets[key]; ok {
		b.lastSeen = now
		return b.limiter
	}

	if len(l.buckets) >= l.config.MaxKeys {
		l.sweepLocked(now)
		if len(l.buckets) >= l.config.MaxKeys {
			return l.overflow
		}
	}

	b := &bucket{
		limiter:  rate.NewLimiter(rate.Every(l.config.Every), l.config.Burst),
		lastSeen: now,
	}
	l.buckets[key] = b
	return b.limiter
}

func (l *AttemptLimiter) sweepLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.config.IdleTTL {
			delete(l.buckets, k)
		}
	}
}
