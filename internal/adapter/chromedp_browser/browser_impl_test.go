package chromedp_browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cloner-service/internal/adapter/useragent"
	"github.com/user/cloner-service/internal/repository"
	"go.uber.org/zap/zaptest"
)

func TestClassify(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")

	err := classify(context.Background(), repository.ErrNavigationFailed, cause)
	assert.ErrorIs(t, err, repository.ErrNavigationFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, repository.ErrCaptureTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err = classify(ctx, repository.ErrNavigationFailed, cause)
	assert.ErrorIs(t, err, repository.ErrCaptureTimeout)
}

func TestAllocatorOptionsUseProxy(t *testing.T) {
	b := NewChromedpBrowser(Options{}, useragent.NewManager([]string{"http://proxy:3128"}, nil), zaptest.NewLogger(t))

	withProxy := b.allocatorOptions("ua")
	withoutProxy := NewChromedpBrowser(Options{}, nil, zaptest.NewLogger(t)).allocatorOptions("ua")
	assert.Len(t, withProxy, len(withoutProxy)+1)
}

func TestSetupActionsOverrideUserAgent(t *testing.T) {
	const ua = "Mozilla/5.0 (X11; Linux x86_64) Test/1.0"
	b := NewChromedpBrowser(Options{RemoteURL: "ws://127.0.0.1:9222"}, useragent.NewManager(nil, []string{ua}), zaptest.NewLogger(t))

	var overrides []*emulation.SetUserAgentOverrideParams
	for _, action := range b.setupActions(b.identities.GetUserAgent()) {
		if p, ok := action.(*emulation.SetUserAgentOverrideParams); ok {
			overrides = append(overrides, p)
		}
	}
	require.Len(t, overrides, 1)
	assert.Equal(t, ua, overrides[0].UserAgent)
}

func TestNewChromedpBrowserDefaults(t *testing.T) {
	b := NewChromedpBrowser(Options{}, nil, zaptest.NewLogger(t))
	assert.Equal(t, 60*time.Second, b.opts.PageLoadTimeout)
	assert.Equal(t, 1920, b.opts.WindowWidth)
	assert.Equal(t, 1080, b.opts.WindowHeight)
}

// TestCapture drives a real Chrome; set CLONER_BROWSER_TESTS=1 where one is installed.
func TestCapture(t *testing.T) {
	if os.Getenv("CLONER_BROWSER_TESTS") == "" {
		t.Skip("set CLONER_BROWSER_TESTS=1 to run against a local Chrome")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Browser Test</title></head><body><h1>Hello</h1></body></html>`))
	}))
	defer server.Close()

	b := NewChromedpBrowser(Options{PageLoadTimeout: 30 * time.Second}, nil, zaptest.NewLogger(t))
	capture, err := b.Capture(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Browser Test", capture.Title)
	assert.Contains(t, capture.HTML, "<h1>Hello</h1>")
	assert.NotEmpty(t, capture.Screenshot)
}
