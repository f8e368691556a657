package repository

import "context"

// GenerateParams is a single prompt for an HTML generator.
type GenerateParams struct {
	SystemPrompt     string
	Prompt           string
	ScreenshotBase64 string // PNG, optional
}

// HTMLGenerator turns a page description into HTML using a hosted model.
type HTMLGenerator interface {
	Generate(ctx context.Context, params GenerateParams) (string, error)
	// Provider names the backend, for logs and metrics.
	Provider() string
}
