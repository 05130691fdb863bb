package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/notifyarchive/internal/extract"
)

// FileConfig is the YAML/JSON configuration file schema.
type FileConfig struct {
	Output struct {
		Dir string `yaml:"dir" json:"dir"`
	} `yaml:"output" json:"output"`

	Subject struct {
		Variant string `yaml:"variant" json:"variant"`
		MaxLen  int    `yaml:"maxLen" json:"maxLen"`
	} `yaml:"subject" json:"subject"`

	HTTP struct {
		UserAgent string        `yaml:"userAgent" json:"userAgent"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout"`
		MaxBytes  int64         `yaml:"maxBytes" json:"maxBytes"`
		Refetch   bool          `yaml:"refetch" json:"refetch"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Bypass      bool          `yaml:"bypass" json:"bypass"`
	} `yaml:"cache" json:"cache"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	DryRun  bool `yaml:"dryRun" json:"dryRun"`
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig copies every value the file sets into cfg. It is the lowest
// layer above defaults; env and flags are applied afterwards.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Output.Dir != "" {
		cfg.OutputDir = fc.Output.Dir
	}
	if fc.Subject.Variant != "" {
		cfg.Variant = fc.Subject.Variant
	}
	if fc.Subject.MaxLen > 0 {
		cfg.MaxSubjectLen = fc.Subject.MaxLen
	}
	if fc.HTTP.UserAgent != "" {
		cfg.UserAgent = fc.HTTP.UserAgent
	}
	if fc.HTTP.Timeout > 0 {
		cfg.HTTPTimeout = fc.HTTP.Timeout
	}
	if fc.HTTP.MaxBytes > 0 {
		cfg.MaxBytes = fc.HTTP.MaxBytes
	}
	cfg.Refetch = cfg.Refetch || fc.HTTP.Refetch
	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms
	cfg.CacheBypass = cfg.CacheBypass || fc.Cache.Bypass
	if fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	cfg.DryRun = cfg.DryRun || fc.DryRun
	cfg.Verbose = cfg.Verbose || fc.Verbose
}

// ValidateConfig performs minimal validation of required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("config: output dir is required")
	}
	if _, ok := extract.ParseVariant(cfg.Variant); !ok {
		return fmt.Errorf("config: unknown subject variant %q (want standard or simple)", cfg.Variant)
	}
	if cfg.MaxSubjectLen < 0 || cfg.MaxBytes < 0 || cfg.HTTPTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
