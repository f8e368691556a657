package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cloner-service/internal/entity"
	"github.com/user/cloner-service/internal/extractor"
	"github.com/user/cloner-service/internal/repository"
	"go.uber.org/zap/zaptest"
)

const page = `<html><head><title>Acme</title></head><body><h1>Hello</h1><p>Some body text.</p></body></html>`

const generated = "<!DOCTYPE html><html><body><h1>Clone</h1></body></html>"

func newTestCloner(t *testing.T, capturer repository.PageCapturer, generator repository.HTMLGenerator, cache repository.CloneCacheRepository, history repository.CloneHistoryRepository) Cloner {
	t.Helper()
	opts := Options{
		Limits:         extractor.DefaultLimits(),
		CacheTTL:       time.Hour,
		MaxConcurrent:  2,
		SendScreenshot: true,
	}
	return NewCloner(capturer, generator, cache, history, opts, zaptest.NewLogger(t))
}

func TestCloneUsesAIOutput(t *testing.T) {
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page, Screenshot: []byte("png")}}
	generator := &fakeGenerator{out: generated}
	cloner := newTestCloner(t, capturer, generator, nil, nil)

	result, err := cloner.Clone(context.Background(), "acme.example.com")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, entity.SourceAI, result.Source)
	assert.Equal(t, generated, result.HTML)
	assert.Equal(t, "https://acme.example.com", result.URL)
	assert.Equal(t, []string{"https://acme.example.com"}, capturer.calls)

	require.Len(t, generator.params, 1)
	assert.Contains(t, generator.params[0].Prompt, "Title: Acme")
	assert.NotEmpty(t, generator.params[0].SystemPrompt)
	assert.NotEmpty(t, generator.params[0].ScreenshotBase64)
}

func TestCloneOmitsScreenshotWhenDisabled(t *testing.T) {
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page, Screenshot: []byte("png")}}
	generator := &fakeGenerator{out: generated}
	cloner := NewCloner(capturer, generator, nil, nil, Options{Limits: extractor.DefaultLimits()}, zaptest.NewLogger(t))

	_, err := cloner.Clone(context.Background(), "https://acme.example.com")
	require.NoError(t, err)
	require.Len(t, generator.params, 1)
	assert.Empty(t, generator.params[0].ScreenshotBase64)
	assert.NotContains(t, generator.params[0].Prompt, "screenshot")
}

func TestCloneFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		generator repository.HTMLGenerator
	}{
		{"no generator", nil},
		{"generator error", &fakeGenerator{err: errors.New("rate limited")}},
		{"not html", &fakeGenerator{out: "Sure! Here is your website."}},
		{"empty output", &fakeGenerator{out: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page}}
			cloner := newTestCloner(t, capturer, tt.generator, nil, nil)

			result, err := cloner.Clone(context.Background(), "https://acme.example.com")
			require.NoError(t, err)

			assert.True(t, result.Success)
			assert.Equal(t, entity.SourceFallback, result.Source)
			assert.Contains(t, result.HTML, "<title>Acme</title>")
			assert.Contains(t, result.HTML, "Website Successfully Cloned")
			assert.Contains(t, result.HTML, "Hello Some body text.")
			assert.Contains(t, result.HTML, "<h1>Hello</h1>")
		})
	}
}

func TestCloneInvalidURL(t *testing.T) {
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page}}
	cloner := newTestCloner(t, capturer, nil, nil, nil)

	_, err := cloner.Clone(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Empty(t, capturer.calls)
}

func TestCloneCaptureFailure(t *testing.T) {
	capturer := &fakeCapturer{err: repository.ErrNavigationFailed}
	generator := &fakeGenerator{out: generated}
	cloner := newTestCloner(t, capturer, generator, nil, nil)

	_, err := cloner.Clone(context.Background(), "https://acme.example.com")
	assert.ErrorIs(t, err, ErrScrapeFailed)
	assert.ErrorIs(t, err, repository.ErrNavigationFailed)
	assert.Empty(t, generator.params)
}

func TestCloneCachesAndRecordsHistory(t *testing.T) {
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page}}
	generator := &fakeGenerator{out: generated}
	cache := newFakeCache()
	history := &fakeHistory{}
	cloner := newTestCloner(t, capturer, generator, cache, history)

	first, err := cloner.Clone(context.Background(), "acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceAI, first.Source)
	assert.Equal(t, time.Hour, cache.ttl)

	second, err := cloner.Clone(context.Background(), "https://acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceCache, second.Source)
	assert.Equal(t, first.HTML, second.HTML)

	assert.Len(t, capturer.calls, 1, "cache hit skips the browser")
	require.Len(t, history.records, 1)
	assert.Equal(t, "https://acme.example.com", history.records[0].URL)
	assert.Equal(t, "Acme", history.records[0].Title)
	assert.Equal(t, len(generated), history.records[0].HTMLBytes)
	assert.NotEmpty(t, history.records[0].ID)

	recent, err := cloner.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestCloneDoesNotCacheFallback(t *testing.T) {
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page}}
	generator := &fakeGenerator{out: generated, err: errors.New("overloaded"), failFirst: 1}
	cache := newFakeCache()
	cloner := newTestCloner(t, capturer, generator, cache, nil)

	first, err := cloner.Clone(context.Background(), "https://acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceFallback, first.Source)
	assert.Empty(t, cache.entries)

	second, err := cloner.Clone(context.Background(), "https://acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceAI, second.Source)
	assert.Equal(t, generated, second.HTML)
	assert.Len(t, generator.params, 2)
	assert.Len(t, capturer.calls, 2)
	assert.Len(t, cache.entries, 1)

	third, err := cloner.Clone(context.Background(), "https://acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceCache, third.Source)
	assert.Len(t, generator.params, 2)
}

func TestCloneDropsOversizedScreenshot(t *testing.T) {
	huge := make([]byte, maxScreenshotBase64Bytes) // base64 grows it past the cap
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page, Screenshot: huge}}
	generator := &fakeGenerator{out: generated}
	cloner := newTestCloner(t, capturer, generator, nil, nil)

	result, err := cloner.Clone(context.Background(), "https://acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceAI, result.Source)
	require.Len(t, generator.params, 1)
	assert.Empty(t, generator.params[0].ScreenshotBase64)
	assert.NotContains(t, generator.params[0].Prompt, "screenshot")
}

func TestRecentLimits(t *testing.T) {
	history := &fakeHistory{}
	cloner := newTestCloner(t, &fakeCapturer{}, nil, nil, history)

	tests := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-3, 20},
		{5, 5},
		{100, 100},
		{101, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		_, err := cloner.Recent(context.Background(), tt.limit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, history.lastLimit, "limit %d", tt.limit)
	}
}

func TestCloneSurvivesStoreErrors(t *testing.T) {
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page}}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	history := &fakeHistory{saveErr: errors.New("relation does not exist")}
	cloner := newTestCloner(t, capturer, &fakeGenerator{out: generated}, cache, history)

	result, err := cloner.Clone(context.Background(), "https://acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceAI, result.Source)
}

func TestCloneCancelledWhileWaitingForSlot(t *testing.T) {
	capturer := &fakeCapturer{capture: &entity.PageCapture{HTML: page}}
	uc := newTestCloner(t, capturer, nil, nil, nil).(*clonerUseCase)
	require.True(t, uc.slots.TryAcquire(2))
	defer uc.slots.Release(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Clone(ctx, "https://acme.example.com")
	assert.ErrorIs(t, err, ErrScrapeFailed)
	assert.Empty(t, capturer.calls)
}

func TestRecentWithoutHistory(t *testing.T) {
	cloner := newTestCloner(t, &fakeCapturer{}, nil, nil, nil)
	_, err := cloner.Recent(context.Background(), 5)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestDependencyHealth(t *testing.T) {
	cloner := newTestCloner(t, &fakeCapturer{}, nil, nil, nil)
	assert.Empty(t, cloner.DependencyHealth(context.Background()))

	cloner = newTestCloner(t, &fakeCapturer{}, nil, newFakeCache(), &fakeHistory{})
	assert.Equal(t, map[string]string{"redis": "healthy", "postgres": "unhealthy"}, cloner.DependencyHealth(context.Background()))
}

func TestAIAvailable(t *testing.T) {
	assert.False(t, newTestCloner(t, &fakeCapturer{}, nil, nil, nil).AIAvailable())
	assert.True(t, newTestCloner(t, &fakeCapturer{}, &fakeGenerator{}, nil, nil).AIAvailable())
}

func TestExtractHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"doctype", "  <!DOCTYPE html><html></html>\n", "<!DOCTYPE html><html></html>", true},
		{"lowercase doctype", "<!doctype html><html></html>", "<!doctype html><html></html>", true},
		{"html tag", "<html lang=\"en\"></html>", "<html lang=\"en\"></html>", true},
		{"fenced", "```html\n<!DOCTYPE html><html></html>\n```", "<!DOCTYPE html><html></html>", true},
		{"bare fence", "```\n<html></html>\n```\n", "<html></html>", true},
		{"fence without newline", "```html\n<html></html>```", "<html></html>", true},
		{"prose after fence", "```html\n<!DOCTYPE html><html></html>\n```\n\nThis page uses flexbox.", "<!DOCTYPE html><html></html>", true},
		{"prose", "Here you go: <html></html>", "", false},
		{"fragment", "<div>hi</div>", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractHTML(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
