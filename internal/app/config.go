package app

import "time"

const (
	DefaultOutputDir   = "notifications"
	DefaultUserAgent   = "notifyarchive/1.0 (+https://github.com/hyperifyio/notifyarchive)"
	DefaultHTTPTimeout = 60 * time.Second
	DefaultEnvFile     = ".env"
)

// Config holds runtime configuration for one archiving run.
type Config struct {
	// Output
	OutputDir string
	DryRun    bool

	// Extraction
	Variant       string
	MaxSubjectLen int

	// Network
	UserAgent   string
	HTTPTimeout time.Duration
	MaxBytes    int64
	// Refetch downloads the document a second time for the save step instead
	// of reusing the bytes that were parsed.
	Refetch bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	// CacheBypass skips revalidation; fresh responses are still stored.
	CacheBypass bool

	// LLM subject suggestion, used only when LLMModel is set.
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	Verbose bool
}

// ApplyDefaults fills zero fields with built-in defaults.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Variant == "" {
		cfg.Variant = "standard"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
}
