package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/user/cloner-service/internal/adapter/useragent"
	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/internal/repository"
	"go.uber.org/zap"
)

const hideWebdriverJS = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// Options control how pages are rendered.
type Options struct {
	// RemoteURL points at a running Chrome DevTools endpoint (ws:// or http://).
	// Empty means a local Chrome is launched for every capture.
	RemoteURL       string
	PageLoadTimeout time.Duration
	RenderWait      time.Duration
	WindowWidth     int
	WindowHeight    int
}

type ChromedpBrowser struct {
	opts       Options
	identities *useragent.Manager
	logger     *zap.Logger
}

var _ repository.PageCapturer = (*ChromedpBrowser)(nil)

// NewChromedpBrowser creates a page capturer backed by chromedp.
func NewChromedpBrowser(opts Options, identities *useragent.Manager, logger *zap.Logger) *ChromedpBrowser {
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 60 * time.Second
	}
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	if identities == nil {
		identities = useragent.NewManager(nil, nil)
	}
	return &ChromedpBrowser{
		opts:       opts,
		identities: identities,
		logger:     logger.Named("browser"),
	}
}

// allocatorOptions builds the flags for a local headless Chrome.
func (b *ChromedpBrowser) allocatorOptions(userAgent string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(b.opts.WindowWidth, b.opts.WindowHeight),
		chromedp.UserAgent(userAgent),
	)
	if proxy := b.identities.GetProxy(); proxy != "" {
		opts = append(opts, chromedp.ProxyServer(proxy))
	}
	return opts
}

func (b *ChromedpBrowser) allocator(ctx context.Context, userAgent string) (context.Context, context.CancelFunc) {
	if b.opts.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, b.opts.RemoteURL)
	}
	return chromedp.NewExecAllocator(ctx, b.allocatorOptions(userAgent)...)
}

// setupActions prepares a fresh tab before navigation. The user agent override
// also covers remote browsers, which never see the allocator flags.
func (b *ChromedpBrowser) setupActions(userAgent string) []chromedp.Action {
	return []chromedp.Action{
		emulation.SetDeviceMetricsOverride(int64(b.opts.WindowWidth), int64(b.opts.WindowHeight), 1, false),
		emulation.SetUserAgentOverride(userAgent),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverJS).Do(ctx)
			return err
		}),
	}
}

// Capture launches a browser, renders the URL and tears the browser down again.
func (b *ChromedpBrowser) Capture(ctx context.Context, url string) (*entity.PageCapture, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.PageLoadTimeout)
	defer cancel()

	userAgent := b.identities.GetUserAgent()
	allocCtx, allocCancel := b.allocator(ctx, userAgent)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(b.logger.Sugar().Debugf))
	defer taskCancel()

	// An empty Run starts the browser, so launch failures are told apart from page failures.
	if err := chromedp.Run(taskCtx); err != nil {
		return nil, classify(ctx, repository.ErrBrowserLaunch, err)
	}

	b.logger.Info("browser started, loading page", zap.String("url", url))

	var title, location, html string
	startTime := time.Now()

	actions := append(b.setupActions(userAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if b.opts.RenderWait > 0 {
		actions = append(actions, chromedp.Sleep(b.opts.RenderWait))
	}
	actions = append(actions,
		chromedp.Title(&title),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return nil, classify(ctx, repository.ErrNavigationFailed, err)
	}
	loadTime := time.Since(startTime)

	var screenshot []byte
	if err := chromedp.Run(taskCtx, chromedp.CaptureScreenshot(&screenshot)); err != nil {
		b.logger.Warn("screenshot failed, continuing without it", zap.String("url", url), zap.Error(err))
		screenshot = nil
	}

	b.logger.Info("page captured",
		zap.String("url", url),
		zap.String("title", title),
		zap.Int("html_bytes", len(html)),
		zap.Int("screenshot_bytes", len(screenshot)),
		zap.Duration("load_time", loadTime),
	)

	return &entity.PageCapture{
		URL:        url,
		FinalURL:   location,
		Title:      title,
		HTML:       html,
		Screenshot: screenshot,
		LoadTime:   loadTime,
	}, nil
}

// classify wraps err with kind, or with ErrCaptureTimeout when the capture deadline passed.
func classify(ctx context.Context, kind, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", repository.ErrCaptureTimeout, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
