// Command notifyarchive downloads one notification PDF, names it
// YYYY-MM-DD_<subject>.pdf from its first page and saves it under the
// output directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/notifyarchive/internal/app"
)

const usage = "Usage: notifyarchive [flags] <PDF_URL>"

// errUsage means the command line was wrong; main prints usage and exits 1.
var errUsage = errors.New(usage)

type options struct {
	configPath  string
	envFiles    string
	showVersion bool
	url         string
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, opts, err := parseArgs(os.Args[1:], os.Stderr)
	if opts.showVersion {
		fmt.Println(app.VersionString())
		return
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
		} else {
			log.Error().Err(err).Msg("invalid configuration")
		}
		os.Exit(1)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(context.Background(), cfg, opts.url); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

// parseArgs resolves the effective configuration. Precedence, lowest first:
// defaults, config file, environment (including dotenv files), explicit flags.
func parseArgs(args []string, errOut io.Writer) (app.Config, options, error) {
	var (
		opts  options
		flags app.Config
	)
	fs := flag.NewFlagSet("notifyarchive", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", os.Getenv("NOTIFY_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&opts.envFiles, "env", app.DefaultEnvFile, "Comma-separated dotenv files to load (missing files are ignored)")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	fs.StringVar(&flags.OutputDir, "out.dir", app.DefaultOutputDir, "Directory the PDF is saved into")
	fs.StringVar(&flags.Variant, "variant", "standard", "Subject heuristics: standard or simple")
	fs.IntVar(&flags.MaxSubjectLen, "subject.max", 0, "Maximum subject length in characters (0 uses the variant default)")
	fs.BoolVar(&flags.Refetch, "refetch", false, "Download the document again for the save step instead of reusing the first download")
	fs.BoolVar(&flags.DryRun, "dry-run", false, "Print the composed filename without saving")
	fs.BoolVar(&flags.Verbose, "v", false, "Verbose logging")
	fs.DurationVar(&flags.HTTPTimeout, "timeout", app.DefaultHTTPTimeout, "Per-download timeout")
	fs.StringVar(&flags.UserAgent, "ua", app.DefaultUserAgent, "User-Agent for downloads")
	fs.Int64Var(&flags.MaxBytes, "max.bytes", 0, "Maximum PDF size in bytes (0 disables)")
	fs.StringVar(&flags.CacheDir, "cache.dir", "", "HTTP and LLM cache directory (empty disables caching)")
	fs.DurationVar(&flags.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&flags.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&flags.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&flags.CacheBypass, "cache.bypass", false, "Skip cache revalidation; fresh responses are still cached")
	fs.StringVar(&flags.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL for subject suggestions")
	fs.StringVar(&flags.LLMModel, "llm.model", "", "Model name; enables subject suggestions when heuristics fail")
	fs.StringVar(&flags.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")

	if err := fs.Parse(args); err != nil {
		return app.Config{}, opts, err
	}
	if opts.showVersion {
		return app.Config{}, opts, nil
	}
	if fs.NArg() != 1 {
		return app.Config{}, opts, errUsage
	}
	opts.url = strings.TrimSpace(fs.Arg(0))

	if err := app.LoadEnvFiles(strings.Split(opts.envFiles, ",")...); err != nil {
		return app.Config{}, opts, fmt.Errorf("load env files: %w", err)
	}
	if opts.configPath == "" {
		opts.configPath = os.Getenv("NOTIFY_CONFIG")
	}

	var cfg app.Config
	if opts.configPath != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return app.Config{}, opts, fmt.Errorf("load config %s: %w", opts.configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out.dir":
			cfg.OutputDir = flags.OutputDir
		case "variant":
			cfg.Variant = flags.Variant
		case "subject.max":
			cfg.MaxSubjectLen = flags.MaxSubjectLen
		case "refetch":
			cfg.Refetch = flags.Refetch
		case "dry-run":
			cfg.DryRun = flags.DryRun
		case "v":
			cfg.Verbose = flags.Verbose
		case "timeout":
			cfg.HTTPTimeout = flags.HTTPTimeout
		case "ua":
			cfg.UserAgent = flags.UserAgent
		case "max.bytes":
			cfg.MaxBytes = flags.MaxBytes
		case "cache.dir":
			cfg.CacheDir = flags.CacheDir
		case "cache.maxAge":
			cfg.CacheMaxAge = flags.CacheMaxAge
		case "cache.clear":
			cfg.CacheClear = flags.CacheClear
		case "cache.strictPerms":
			cfg.CacheStrictPerms = flags.CacheStrictPerms
		case "cache.bypass":
			cfg.CacheBypass = flags.CacheBypass
		case "llm.base":
			cfg.LLMBaseURL = flags.LLMBaseURL
		case "llm.model":
			cfg.LLMModel = flags.LLMModel
		case "llm.key":
			cfg.LLMAPIKey = flags.LLMAPIKey
		}
	})

	app.ApplyDefaults(&cfg)
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, opts, err
	}
	return cfg, opts, nil
}

func run(ctx context.Context, cfg app.Config, url string) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	_, err = a.Run(ctx, url)
	return err
}
