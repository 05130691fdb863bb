package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("NOTIFY_OUTPUT_DIR", "")
	t.Setenv("LLM_MODEL", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	writeFile(t, envPath, "\n# sample dotenv file\nNOTIFY_OUTPUT_DIR=archive\nexport LLM_MODEL=\"small-model\"\n")

	if err := LoadEnvFiles(envPath); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("NOTIFY_OUTPUT_DIR"); got != "archive" {
		t.Fatalf("NOTIFY_OUTPUT_DIR=%q, want archive", got)
	}
	if got := os.Getenv("LLM_MODEL"); got != "small-model" {
		t.Fatalf("LLM_MODEL=%q, want small-model", got)
	}
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	writeFile(t, a, "K=first\n")
	writeFile(t, b, "K=second\n")

	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestLoadEnvFiles_KeepsProcessEnv(t *testing.T) {
	t.Setenv("K", "from-shell")
	p := filepath.Join(t.TempDir(), ".env")
	writeFile(t, p, "K=from-file\n")
	if err := LoadEnvFiles(p); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "from-shell" {
		t.Fatalf("K=%q, want from-shell", got)
	}
}

func TestLoadEnvFiles_MissingFileIgnored(t *testing.T) {
	if err := LoadEnvFiles(filepath.Join(t.TempDir(), "nope.env"), ""); err != nil {
		t.Fatalf("missing file should be skipped: %v", err)
	}
}

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		in       string
		key, val string
		ok       bool
	}{
		{"A=1", "A", "1", true},
		{"  export B = two  ", "B", "two", true},
		{"C='quoted value'", "C", "quoted value", true},
		{"D=", "D", "", true},
		{"# comment", "", "", false},
		{"no equals", "", "", false},
		{"BAD KEY=x", "", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		k, v, ok := parseEnvLine(c.in)
		if ok != c.ok || k != c.key || v != c.val {
			t.Errorf("parseEnvLine(%q) = %q,%q,%v want %q,%q,%v", c.in, k, v, ok, c.key, c.val, c.ok)
		}
	}
}

func TestApplyEnvOverrides_FromEnv(t *testing.T) {
	t.Setenv("NOTIFY_OUTPUT_DIR", "out")
	t.Setenv("NOTIFY_VARIANT", "simple")
	t.Setenv("NOTIFY_SUBJECT_MAX", "40")
	t.Setenv("NOTIFY_REFETCH", "yes")
	t.Setenv("NOTIFY_MAX_BYTES", "1048576")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("CACHE_DIR", "/tmp/notify-cache")
	t.Setenv("CACHE_MAX_AGE", "24h")
	t.Setenv("DRY_RUN", "1")
	t.Setenv("LLM_MODEL", "m")
	t.Setenv("CACHE_BYPASS", "true")

	cfg := Config{Refetch: false, Verbose: true}
	t.Setenv("VERBOSE", "off")
	ApplyEnvOverrides(&cfg)

	if cfg.OutputDir != "out" || cfg.Variant != "simple" || cfg.MaxSubjectLen != 40 {
		t.Fatalf("string/int overrides not applied: %+v", cfg)
	}
	if !cfg.Refetch || !cfg.DryRun || cfg.Verbose {
		t.Fatalf("bool overrides not applied: %+v", cfg)
	}
	if cfg.MaxBytes != 1<<20 || cfg.HTTPTimeout.String() != "15s" || cfg.CacheMaxAge.Hours() != 24 {
		t.Fatalf("numeric overrides not applied: %+v", cfg)
	}
	if cfg.CacheDir != "/tmp/notify-cache" || cfg.LLMModel != "m" || !cfg.CacheBypass {
		t.Fatalf("cache/llm overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvOverrides_IgnoresInvalid(t *testing.T) {
	t.Setenv("NOTIFY_SUBJECT_MAX", "-3")
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("DRY_RUN", "maybe")
	cfg := Config{MaxSubjectLen: 80, DryRun: true}
	ApplyEnvOverrides(&cfg)
	if cfg.MaxSubjectLen != 80 || cfg.HTTPTimeout != 0 || !cfg.DryRun {
		t.Fatalf("invalid values should be ignored: %+v", cfg)
	}
}
