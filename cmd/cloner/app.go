package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/cloner-service/internal/adapter/anthropic_generator"
	"github.com/user/cloner-service/internal/adapter/chromedp_browser"
	"github.com/user/cloner-service/internal/adapter/openai_generator"
	"github.com/user/cloner-service/internal/adapter/postgres"
	redis_adapter "github.com/user/cloner-service/internal/adapter/redis"
	"github.com/user/cloner-service/internal/adapter/useragent"
	"github.com/user/cloner-service/internal/extractor"
	"github.com/user/cloner-service/internal/repository"
	"github.com/user/cloner-service/internal/usecase"
	"github.com/user/cloner-service/pkg/config"
	"github.com/user/cloner-service/pkg/metrics"
	"go.uber.org/zap"
)

// app is the wired service shared by the serve and clone commands.
type app struct {
	cloner  usecase.Cloner
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	// --- Metrics ---
	metrics.Init()

	// --- Stores ---
	// Interfaces stay nil unless configured, so the use case skips them.
	var cache repository.CloneCacheRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		cache = redis_adapter.NewCloneCacheRepo(rdb)
		logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
	}

	var history repository.CloneHistoryRepository
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}
		a.closers = append(a.closers, dbpool.Close)
		if err := dbpool.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		repo := postgres.NewCloneHistoryRepo(dbpool)
		if err := repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("create clone_history table: %w", err)
		}
		history = repo
		logger.Info("PostgreSQL connection pool established")
	}

	// --- Adapters ---
	identities := useragent.NewManager(cfg.BrowserProxies, nil)
	browser := chromedp_browser.NewChromedpBrowser(chromedp_browser.Options{
		RemoteURL:       cfg.ChromeRemoteURL,
		PageLoadTimeout: cfg.PageLoadTimeout,
		RenderWait:      cfg.RenderWait,
		WindowWidth:     cfg.WindowWidth,
		WindowHeight:    cfg.WindowHeight,
	}, identities, logger)

	generator := newGenerator(cfg, logger)

	// --- Use Cases ---
	a.cloner = usecase.NewCloner(browser, generator, cache, history, usecase.Options{
		Limits: extractor.Limits{
			MaxHTMLChars:        cfg.MaxHTMLChars,
			MaxTextChars:        cfg.MaxTextChars,
			MaxLinks:            cfg.MaxLinks,
			MaxImages:           cfg.MaxImages,
			MaxHeadingsPerLevel: cfg.MaxHeadingsPerLevel,
		},
		CacheTTL:       cfg.CacheTTL,
		MaxConcurrent:  cfg.MaxConcurrentClones,
		SendScreenshot: cfg.AISendScreenshot,
	}, logger)

	return a, nil
}

// newGenerator returns nil when no API key is configured for the provider.
func newGenerator(cfg *config.Config, logger *zap.Logger) repository.HTMLGenerator {
	apiKey := cfg.AIAPIKey()
	if apiKey == "" {
		logger.Warn("AI API key not found, every clone will use the fallback template", zap.String("provider", cfg.AIProvider))
		return nil
	}

	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		logger.Info("OpenAI client initialized")
		return openai_generator.NewOpenAIGenerator(openai_generator.Options{
			APIKey:      apiKey,
			BaseURL:     cfg.AIBaseURL,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Timeout:     cfg.AITimeout,
		}, logger)
	default:
		logger.Info("Anthropic client initialized")
		return anthropic_generator.NewAnthropicGenerator(anthropic_generator.Options{
			APIKey:      apiKey,
			BaseURL:     cfg.AIBaseURL,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Timeout:     cfg.AITimeout,
		}, logger)
	}
}

// credentialVars reports which API key variables are set, without their values.
func credentialVars(cfg *config.Config) map[string]bool {
	vars := map[string]bool{"ANTHROPIC_API_KEY": cfg.AnthropicAPIKey != ""}
	if cfg.AIProvider == config.ProviderOpenAI {
		vars["OPENAI_API_KEY"] = cfg.OpenAIAPIKey != ""
	}
	return vars
}
