package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/internal/extractor"
	"github.com/user/cloner-service/internal/repository"
	"github.com/user/cloner-service/pkg/metrics"
	"github.com/user/cloner-service/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrScrapeFailed    = errors.New("failed to scrape website")
	ErrHistoryDisabled = errors.New("clone history is not configured")
)

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"

	defaultRecentLimit = 20
	maxRecentLimit     = 100

	// maxScreenshotBase64Bytes is the largest image the model APIs accept.
	maxScreenshotBase64Bytes = 5 * 1024 * 1024
)

// Cloner defines the interface for cloning websites.
type Cloner interface {
	Clone(ctx context.Context, rawURL string) (*entity.CloneResult, error)
	// AIAvailable reports whether an AI generator is configured.
	AIAvailable() bool
	Recent(ctx context.Context, limit int) ([]*entity.CloneRecord, error)
	// DependencyHealth maps each configured backing store to "healthy" or "unhealthy".
	DependencyHealth(ctx context.Context) map[string]string
}

// Options tune the clone pipeline.
type Options struct {
	Limits         extractor.Limits
	CacheTTL       time.Duration
	MaxConcurrent  int64
	SendScreenshot bool
}

type clonerUseCase struct {
	capturer  repository.PageCapturer
	generator repository.HTMLGenerator
	cache     repository.CloneCacheRepository
	history   repository.CloneHistoryRepository
	slots     *semaphore.Weighted
	opts      Options
	logger    *zap.Logger
}

// NewCloner creates the clone use case. generator, cache and history may be nil:
// without a generator every clone uses the fallback template, and the stores are simply skipped.
func NewCloner(
	capturer repository.PageCapturer,
	generator repository.HTMLGenerator,
	cache repository.CloneCacheRepository,
	history repository.CloneHistoryRepository,
	opts Options,
	logger *zap.Logger,
) Cloner {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &clonerUseCase{
		capturer:  capturer,
		generator: generator,
		cache:     cache,
		history:   history,
		slots:     semaphore.NewWeighted(opts.MaxConcurrent),
		opts:      opts,
		logger:    logger.Named("cloner"),
	}
}

func (uc *clonerUseCase) AIAvailable() bool {
	return uc.generator != nil
}

// Clone normalizes the URL, renders it, and returns AI-generated HTML, or the
// fallback template when generation is unavailable or unusable.
func (uc *clonerUseCase) Clone(ctx context.Context, rawURL string) (*entity.CloneResult, error) {
	target, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	log := uc.logger.With(zap.String("url", target))
	log.Info("Received clone request", zap.String("raw_url", rawURL))

	if cached := uc.lookupCache(ctx, target, log); cached != nil {
		metrics.ClonesTotal.WithLabelValues(entity.SourceCache).Inc()
		return cached, nil
	}

	startTime := time.Now()

	capture, err := uc.capture(ctx, target)
	if err != nil {
		metrics.CloneFailuresTotal.WithLabelValues("capture").Inc()
		log.Error("Capture failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrScrapeFailed, err)
	}

	record, err := extractor.Extract(capture, uc.opts.Limits)
	if err != nil {
		metrics.CloneFailuresTotal.WithLabelValues("extract").Inc()
		log.Error("Extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrScrapeFailed, err)
	}
	switch {
	case !uc.opts.SendScreenshot:
		record.ScreenshotBase64 = ""
	case len(record.ScreenshotBase64) > maxScreenshotBase64Bytes:
		log.Warn("Screenshot too large for the model, sending text only", zap.Int("base64_bytes", len(record.ScreenshotBase64)))
		record.ScreenshotBase64 = ""
	}
	log.Info("Scraped page",
		zap.String("title", record.Title),
		zap.Int("links", len(record.Links)),
		zap.Int("images", len(record.Images)),
		zap.Int("headings", len(record.Headings)),
	)

	html, source := uc.generate(ctx, record, log)

	result := &entity.CloneResult{
		URL:     target,
		Title:   record.Title,
		HTML:    html,
		Success: true,
		Source:  source,
	}
	uc.store(ctx, result, time.Since(startTime), log)

	metrics.ClonesTotal.WithLabelValues(source).Inc()
	log.Info("Website cloning completed", zap.String("source", source), zap.Duration("duration", time.Since(startTime)))
	return result, nil
}

// capture holds a browser slot for the duration of one page capture.
func (uc *clonerUseCase) capture(ctx context.Context, target string) (*entity.PageCapture, error) {
	if err := uc.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer uc.slots.Release(1)

	metrics.ClonesInFlight.Inc()
	defer metrics.ClonesInFlight.Dec()

	startTime := time.Now()
	capture, err := uc.capturer.Capture(ctx, target)
	metrics.CaptureDuration.Observe(time.Since(startTime).Seconds())
	return capture, err
}

func (uc *clonerUseCase) generate(ctx context.Context, record *entity.ScrapeRecord, log *zap.Logger) (string, string) {
	if uc.generator == nil {
		log.Warn("AI client not available, using fallback")
		return RenderFallback(record), entity.SourceFallback
	}

	params := repository.GenerateParams{
		SystemPrompt:     systemPrompt,
		Prompt:           BuildPrompt(record),
		ScreenshotBase64: record.ScreenshotBase64,
	}

	provider := uc.generator.Provider()
	log.Info("Sending request to AI", zap.String("provider", provider), zap.Int("prompt_chars", len(params.Prompt)))

	startTime := time.Now()
	out, err := uc.generator.Generate(ctx, params)
	metrics.GenerationDuration.WithLabelValues(provider).Observe(time.Since(startTime).Seconds())
	if err != nil {
		metrics.CloneFailuresTotal.WithLabelValues("generate").Inc()
		log.Error("AI generation failed, using fallback", zap.Error(err))
		return RenderFallback(record), entity.SourceFallback
	}

	html, ok := ExtractHTML(out)
	if !ok {
		metrics.CloneFailuresTotal.WithLabelValues("validate").Inc()
		log.Warn("Generated content doesn't look like HTML, using fallback", zap.Int("length", len(out)))
		return RenderFallback(record), entity.SourceFallback
	}

	log.Info("AI generated HTML", zap.Int("length", len(html)))
	return html, entity.SourceAI
}

// ExtractHTML trims model output, unwraps a surrounding markdown code fence,
// and reports whether what remains is an HTML document.
func ExtractHTML(out string) (string, bool) {
	s := strings.TrimSpace(out)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = ""
		}
		// Anything after the closing fence is commentary.
		if end := strings.LastIndex(s, "\n```"); end >= 0 {
			s = s[:end]
		} else {
			s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		}
		s = strings.TrimSpace(s)
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html") {
		return s, true
	}
	return "", false
}

func (uc *clonerUseCase) lookupCache(ctx context.Context, target string, log *zap.Logger) *entity.CloneResult {
	if uc.cache == nil {
		return nil
	}
	cached, err := uc.cache.Get(ctx, target)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			metrics.CloneFailuresTotal.WithLabelValues("cache").Inc()
			log.Warn("Cache lookup failed", zap.Error(err))
		}
		return nil
	}
	if !cached.Success || cached.HTML == "" {
		return nil
	}
	log.Info("Serving clone from cache")
	cached.Source = entity.SourceCache
	return cached
}

// store writes the result to the cache and the history table. Both are best effort.
func (uc *clonerUseCase) store(ctx context.Context, result *entity.CloneResult, elapsed time.Duration, log *zap.Logger) {
	// Fallback pages are not cached so the next request retries the model.
	if uc.cache != nil && uc.opts.CacheTTL > 0 && result.Source == entity.SourceAI {
		if err := uc.cache.Set(ctx, result.URL, result, uc.opts.CacheTTL); err != nil {
			metrics.CloneFailuresTotal.WithLabelValues("cache").Inc()
			log.Warn("Failed to cache clone result", zap.Error(err))
		}
	}

	if uc.history != nil {
		record := &entity.CloneRecord{
			ID:         uuid.NewString(),
			URL:        result.URL,
			Title:      result.Title,
			Source:     result.Source,
			HTMLBytes:  len(result.HTML),
			DurationMS: elapsed.Milliseconds(),
			CreatedAt:  time.Now().UTC(),
		}
		if err := uc.history.Save(ctx, record); err != nil {
			metrics.CloneFailuresTotal.WithLabelValues("history").Inc()
			log.Warn("Failed to save clone history", zap.Error(err))
		}
	}
}

func (uc *clonerUseCase) Recent(ctx context.Context, limit int) ([]*entity.CloneRecord, error) {
	if uc.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)
	return uc.history.ListRecent(ctx, limit)
}

func (uc *clonerUseCase) DependencyHealth(ctx context.Context) map[string]string {
	status := make(map[string]string)
	if uc.cache != nil {
		status["redis"] = healthy
		if err := uc.cache.Ping(ctx); err != nil {
			uc.logger.Error("health check failed for redis", zap.Error(err))
			status["redis"] = unhealthy
		}
	}
	if uc.history != nil {
		status["postgres"] = healthy
		if err := uc.history.Ping(ctx); err != nil {
			uc.logger.Error("health check failed for postgres", zap.Error(err))
			status["postgres"] = unhealthy
		}
	}
	return status
}
