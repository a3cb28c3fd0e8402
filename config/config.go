package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Browser     BrowserConfig
	Scraper     ScraperConfig
	Credentials CredentialsConfig
	Defaults    DefaultsConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Cache       CacheConfig
	Log         LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls how each request's browser is launched and how
// its pages are dressed.
type BrowserConfig struct {
	// DefaultProxy is the proxy URL for every launched browser.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects the stealth evasions into every page.
	Stealth bool // default: true

	// DesktopUserAgent is used for timeline targets.
	DesktopUserAgent string

	// MobileUserAgent is used for list targets on the mobile host.
	MobileUserAgent string

	// BlockedURLs are URL patterns (with * wildcards) the browser refuses
	// to load. Media and fonts only; stylesheets are needed for layout.
	BlockedURLs []string
}

// ScraperConfig controls the convergence pipeline.
type ScraperConfig struct {
	// MaxTimeout is the maximum navigation timeout a client may ask for.
	MaxTimeout time.Duration // default: 120s

	// SettleTimeout bounds the best-effort wait for network quiescence.
	SettleTimeout time.Duration // default: 8s

	// ExtractRetryWait is the single wait before re-extracting when no
	// content block matched.
	ExtractRetryWait time.Duration // default: 2s

	// MaxDuration is a ceiling on one whole request.
	MaxDuration time.Duration // default: 5m

	// MaxLimit is the largest accepted limit.
	MaxLimit int // default: 500

	// MaxScrolls is the largest accepted number of reveal rounds.
	MaxScrolls int // default: 60

	// MaxDelay is the largest accepted per-step reveal delay.
	MaxDelay time.Duration // default: 10s
}

// CredentialsConfig holds the externally supplied session tokens.
type CredentialsConfig struct {
	AuthToken string // X_AUTH_TOKEN
	CSRFToken string // X_CT0
}

// Complete reports whether both tokens are present.
func (c CredentialsConfig) Complete() bool {
	return c.AuthToken != "" && c.CSRFToken != ""
}

// DefaultsConfig holds the per-request defaults that query parameters
// override.
type DefaultsConfig struct {
	Limit           int           // default: 50
	WithUser        bool          // default: true
	IncludeCounters bool          // default: false
	Headless        bool          // default: true
	Timeout         time.Duration // default: 90s
	Scrolls         int           // default: 10
	Delay           time.Duration // default: 1200ms
	UseCookies      bool          // default: true
	CacheMaxAge     time.Duration // default: 0 (disabled)
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity. Zero disables.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per identity.
	Burst int // default: 3
}

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 200
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

const (
	defaultDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	defaultMobileUA  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36"
)

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("XFEED_HOST", "0.0.0.0"),
			Port: envIntOr("PORT", envIntOr("XFEED_PORT", 3000)),
			Mode: envOr("XFEED_MODE", "release"),
		},
		Browser: BrowserConfig{
			DefaultProxy:     envOr("XFEED_PROXY", os.Getenv("HTTP_PROXY")),
			NoSandbox:        envBoolOr("XFEED_NO_SANDBOX", false),
			BrowserBin:       os.Getenv("XFEED_BROWSER_BIN"),
			Stealth:          envBoolOr("XFEED_STEALTH", true),
			DesktopUserAgent: envOr("XFEED_UA_DESKTOP", defaultDesktopUA),
			MobileUserAgent:  envOr("XFEED_UA_MOBILE", defaultMobileUA),
			BlockedURLs: envSliceOr("XFEED_BLOCKED_URLS", []string{
				"*.mp4*", "*.m3u8*", "*.m4s*", "*.woff*", "*.ttf*",
				"*video.twimg.com*",
			}),
		},
		Scraper: ScraperConfig{
			MaxTimeout:       envDurationOr("XFEED_MAX_TIMEOUT", 120*time.Second),
			SettleTimeout:    envDurationOr("XFEED_SETTLE_TIMEOUT", 8*time.Second),
			ExtractRetryWait: envDurationOr("XFEED_EXTRACT_RETRY_WAIT", 2*time.Second),
			MaxDuration:      envDurationOr("XFEED_MAX_DURATION", 5*time.Minute),
			MaxLimit:         envIntOr("XFEED_MAX_LIMIT", 500),
			MaxScrolls:       envIntOr("XFEED_MAX_SCROLLS", 60),
			MaxDelay:         envDurationOr("XFEED_MAX_DELAY", 10*time.Second),
		},
		Credentials: CredentialsConfig{
			AuthToken: strings.TrimSpace(os.Getenv("X_AUTH_TOKEN")),
			CSRFToken: strings.TrimSpace(os.Getenv("X_CT0")),
		},
		Defaults: DefaultsConfig{
			Limit:           envIntOr("XFEED_DEFAULT_LIMIT", 50),
			WithUser:        envBoolOr("XFEED_WITH_USER", true),
			IncludeCounters: envBoolOr("XFEED_INCLUDE_COUNTERS", false),
			Headless:        envBoolOr("HEADLESS", true),
			Timeout:         envMillisOr("XFEED_NAV_TIMEOUT_MS", 90*time.Second),
			Scrolls:         envIntOr("MAX_SCROLLS", 10),
			Delay:           envMillisOr("SCROLL_DELAY_MS", 1200*time.Millisecond),
			UseCookies:      envBoolOr("XFEED_USE_COOKIES", true),
			CacheMaxAge:     envMillisOr("XFEED_CACHE_MAX_AGE_MS", 0),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("XFEED_AUTH_ENABLED", false),
			APIKeys: envSliceOr("XFEED_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("XFEED_RATE_RPS", 1.0),
			Burst:             envIntOr("XFEED_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("XFEED_CACHE_MAX_ENTRIES", 200),
		},
		Log: LogConfig{
			Level:  envOr("XFEED_LOG_LEVEL", "info"),
			Format: envOr("XFEED_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, ok := parseBool(v); ok {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envMillisOr reads a plain millisecond count.
func envMillisOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
