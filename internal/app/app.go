package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/notifyarchive/internal/cache"
	"github.com/hyperifyio/notifyarchive/internal/compose"
	"github.com/hyperifyio/notifyarchive/internal/extract"
	"github.com/hyperifyio/notifyarchive/internal/fetch"
	"github.com/hyperifyio/notifyarchive/internal/llm"
	"github.com/hyperifyio/notifyarchive/internal/pdftext"
	"github.com/hyperifyio/notifyarchive/internal/suggest"
)

// Pipeline failures. Each is wrapped together with its cause, so both
// errors.Is(err, ErrFetch) and the underlying error remain inspectable.
var (
	// ErrFetch covers download failures and unreadable or empty PDFs.
	ErrFetch = errors.New("fetch failed")
	// ErrExtraction means no date or no subject could be recovered.
	ErrExtraction = errors.New("could not extract both date and subject from PDF")
	// ErrSave covers the second download and writing the output file.
	ErrSave = errors.New("save failed")
)

type documentGetter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type subjectSuggester interface {
	Suggest(ctx context.Context, text string) (string, error)
}

// App runs the fetch, extract, compose and save pipeline for one URL.
type App struct {
	cfg    Config
	getter documentGetter
	// refetcher serves the second download; it never revalidates against the
	// cache, so the saved bytes come from a fresh response.
	refetcher documentGetter
	extractor *extract.Extractor
	suggester subjectSuggester
	firstPage func([]byte) (string, error)
	now       func() time.Time
	stdout    io.Writer
}

// Outcome describes what a run produced.
type Outcome struct {
	URL          string
	RawDate      string
	Subject      string
	Matcher      string
	Filename     string
	Path         string
	DateFellBack bool
	Written      bool
}

func New(_ context.Context, cfg Config) (*App, error) {
	ApplyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	variant, _ := extract.ParseVariant(cfg.Variant)

	a := &App{
		cfg:       cfg,
		extractor: &extract.Extractor{Variant: variant, MaxSubjectLen: cfg.MaxSubjectLen},
		firstPage: pdftext.FirstPage,
		now:       time.Now,
		stdout:    os.Stdout,
	}

	var httpCache *cache.HTTPCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged expired cache entries")
			}
		}
		httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	client := &fetch.Client{
		HTTPClient:        newHTTPClient(cfg.HTTPTimeout),
		UserAgent:         cfg.UserAgent,
		PerRequestTimeout: cfg.HTTPTimeout,
		Cache:             httpCache,
		BypassCache:       cfg.CacheBypass,
		MaxBytes:          cfg.MaxBytes,
	}
	fresh := *client
	fresh.BypassCache = true
	a.getter, a.refetcher = client, &fresh

	if cfg.LLMModel != "" {
		s := &suggest.LLMSuggester{Client: llm.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey), Model: cfg.LLMModel}
		if cfg.CacheDir != "" {
			s.Cache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		}
		a.suggester = s
	}
	return a, nil
}

// Run archives the PDF at url. Nothing is written unless every stage
// succeeds.
func (a *App) Run(ctx context.Context, url string) (Outcome, error) {
	out := Outcome{URL: url}
	log.Info().Str("url", url).Msg("processing URL")

	// 1) Download and read page one
	data, err := a.getter.Get(ctx, url)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("error downloading the PDF")
		return out, fmt.Errorf("%w: download: %w", ErrFetch, err)
	}
	text, err := a.firstPage(data)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("error reading the PDF content")
		return out, fmt.Errorf("%w: read pdf: %w", ErrFetch, err)
	}
	if strings.TrimSpace(text) == "" {
		log.Error().Str("url", url).Msg("first page has no text layer")
		return out, fmt.Errorf("%w: first page has no text", ErrFetch)
	}
	log.Debug().Int("chars", len(text)).Msg("extracted first page text")

	// 2) Date and subject
	res := a.extractor.Extract(text)
	if !res.HasSubject() && a.suggester != nil {
		res = a.suggestSubject(ctx, text, res)
	}
	out.RawDate, out.Subject, out.Matcher = res.RawDate, res.Subject, res.SubjectMatcher
	if !res.HasDate() || !res.HasSubject() {
		subject := res.Subject
		if subject == "" {
			subject = a.extractor.Sentinel()
		}
		date := res.RawDate
		if date == "" {
			date = "None"
		}
		log.Error().Str("date_found", date).Str("subject_found", subject).Msg("could not extract both date and subject from PDF")
		return out, ErrExtraction
	}
	log.Debug().Str("raw_date", res.RawDate).Str("date_matcher", res.DateMatcher).
		Str("subject", res.Subject).Str("subject_matcher", res.SubjectMatcher).Bool("generic", res.Generic).
		Msg("extracted details")

	// 3) Filename
	name, derr := compose.Compose(res.RawDate, res.Subject, a.now())
	if derr != nil {
		log.Warn().Err(derr).Str("raw_date", res.RawDate).Msg("could not parse date; using current date")
	}
	out.Filename, out.DateFellBack = name.Filename, name.FellBack
	log.Info().Str("filename", name.Filename).Msg("constructed filename")

	if a.cfg.DryRun {
		log.Info().Str("filename", name.Filename).Msg("dry run; not saving")
		return out, nil
	}

	// 4) Save the original bytes
	body := data
	if a.cfg.Refetch {
		refetcher := a.refetcher
		if refetcher == nil {
			refetcher = a.getter
		}
		body, err = refetcher.Get(ctx, url)
		if err != nil {
			log.Error().Err(err).Str("url", url).Msg("error saving PDF (second download)")
			return out, fmt.Errorf("%w: second download: %w", ErrSave, err)
		}
	}
	path, err := saveDocument(a.cfg.OutputDir, name.Filename, body)
	if err != nil {
		log.Error().Err(err).Str("dir", a.cfg.OutputDir).Msg("error writing output file")
		return out, fmt.Errorf("%w: %w", ErrSave, err)
	}
	out.Path, out.Written = path, true
	writeNotice(a.stdout, path, name.Filename)
	log.Info().Str("path", path).Int("bytes", len(body)).Msg("file saved successfully")
	return out, nil
}

// suggestSubject is the last resort when no heuristic found a subject. Any
// failure is logged and leaves res unchanged.
func (a *App) suggestSubject(ctx context.Context, text string, res extract.Result) extract.Result {
	raw, err := a.suggester.Suggest(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("subject suggestion failed")
		return res
	}
	if s := extract.NormalizeSubject(raw, a.extractor.MaxLen()); s != "" {
		res.Subject = s
		res.SubjectMatcher = "llm"
		log.Info().Str("subject", s).Msg("using suggested subject")
	}
	return res
}
