package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Tier is a rate limit applied to a group of endpoints. All endpoints in a
// tier share one bucket per client.
type Tier struct {
	Name   string
	Limit  int // requests per window; 0 means unlimited
	Window time.Duration
	Burst  int // bucket capacity; defaults to Limit
}

// Rule routes requests to a tier. A Path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Tier   string
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Tiers           []Tier
	Rules           []Rule
}

type envConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"1000"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	IdleTTL         time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"1h"`
	LoginLimit      int           `env:"RATE_LIMIT_LOGIN_LIMIT" envDefault:"10"`
	WriteLimit      int           `env:"RATE_LIMIT_WRITE_LIMIT" envDefault:"100"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST"`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST"`
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() (*Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return nil, fmt.Errorf("parse rate limit env: %w", err)
	}
	if !ec.Enabled {
		return &Config{Enabled: false}, nil
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    ec.DefaultLimit,
		DefaultWindow:   ec.DefaultWindow,
		CleanupInterval: ec.CleanupInterval,
		IdleTTL:         ec.IdleTTL,
		Whitelist:       toSet(ec.Whitelist),
		Blacklist:       toSet(ec.Blacklist),
		Tiers:           DefaultTiers(ec.LoginLimit, ec.WriteLimit),
		Rules:           DefaultRules(),
	}, nil
}

// Tier names used by DefaultRules.
const (
	TierLogin     = "login"
	TierWrite     = "write"
	TierUnlimited = "unlimited"
)

// DefaultTiers returns the strict login tier, the moderate write tier and the
// unlimited tier. Everything else falls back to the default limit.
func DefaultTiers(loginLimit, writeLimit int) []Tier {
	return []Tier{
		{Name: TierLogin, Limit: loginLimit, Window: time.Minute, Burst: max(loginLimit/2, 1)},
		{Name: TierWrite, Limit: writeLimit, Window: time.Minute, Burst: max(writeLimit/10, 1)},
		{Name: TierUnlimited},
	}
}

// DefaultRules maps the service's endpoints onto the default tiers.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodPost, Path: "/login", Tier: TierLogin},

		{Method: http.MethodPost, Path: "/add-application", Tier: TierWrite},
		{Method: http.MethodPost, Path: "/applications", Tier: TierWrite},
		{Method: http.MethodPost, Path: "/applications/", Tier: TierWrite},
		{Method: http.MethodPatch, Path: "/applications/", Tier: TierWrite},
		{Method: http.MethodPut, Path: "/applications/", Tier: TierWrite},
		{Method: http.MethodDelete, Path: "/applications/", Tier: TierWrite},

		{Method: http.MethodGet, Path: "/health", Tier: TierUnlimited},
		{Method: http.MethodGet, Path: "/metrics", Tier: TierUnlimited},
	}
}

// match finds the tier name for a request. Exact paths beat prefixes.
func match(rules []Rule, method, path string) (string, bool) {
	for _, r := range rules {
		if r.Method == method && r.Path == path {
			return r.Tier, true
		}
	}
	for _, r := range rules {
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r.Tier, true
		}
	}
	return "", false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = true
		}
	}
	return set
}
