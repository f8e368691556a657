package repository

import (
	"context"
	"errors"

	"github.com/user/cloner-service/internal/entity"
)

var (
	ErrBrowserLaunch    = errors.New("failed to start headless browser")
	ErrNavigationFailed = errors.New("navigation failed")
	ErrCaptureTimeout   = errors.New("page capture timed out")
)

// PageCapturer renders a URL in a headless browser.
type PageCapturer interface {
	// Capture loads the URL and returns its rendered DOM and a screenshot.
	Capture(ctx context.Context, url string) (*entity.PageCapture, error)
}
