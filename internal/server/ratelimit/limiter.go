package ratelimit

import (
	"sync"
	"time"
)

// defaultTier is the bucket name for requests no rule matches.
const defaultTier = "default"

// Info describes the limit that applied to a request.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int // 0 when the request was not metered
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages one token bucket per client and tier.
type Limiter struct {
	config *Config
	tiers  map[string]Tier
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*tokenBucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. A nil config allows 1000 requests per minute
// per client.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = time.Hour
	}

	l := &Limiter{
		config:  config,
		tiers:   make(map[string]Tier, len(config.Tiers)+1),
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
	}
	for _, t := range config.Tiers {
		l.tiers[t.Name] = t
	}
	if _, ok := l.tiers[defaultTier]; !ok {
		l.tiers[defaultTier] = Tier{
			Name:   defaultTier,
			Limit:  config.DefaultLimit,
			Window: config.DefaultWindow,
		}
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Allow meters one request from clientID.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	name, ok := match(l.config.Rules, method, path)
	if !ok {
		name = defaultTier
	}
	tier, ok := l.tiers[name]
	if !ok {
		tier = l.tiers[defaultTier]
	}
	if tier.Limit <= 0 || tier.Window <= 0 {
		return true, Info{Allowed: true, Tier: tier.Name}
	}

	now := l.now()
	bucket := l.bucket(clientID+"|"+tier.Name, tier, now)
	allowed, remaining, reset := bucket.take(now)

	info := Info{
		Allowed:   allowed,
		Tier:      tier.Name,
		Limit:     tier.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		info.RetryAfter = max(bucket.nextTokenAt(now).Sub(now), 0)
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, tier Tier, now time.Time) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	capacity := tier.Burst
	if capacity <= 0 {
		capacity = tier.Limit
	}
	b := newTokenBucket(capacity, float64(tier.Limit)/tier.Window.Seconds(), now)
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle for longer than IdleTTL.
func (l *Limiter) sweep() int {
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, b := range l.buckets {
		if b.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// size is the number of live buckets.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
