package anthropic_generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/user/cloner-service/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultModel = "claude-3-5-sonnet-latest"
	providerName = "anthropic"
)

var errEmptyResponse = errors.New("anthropic returned no text content")

// Options configure the Messages API call.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type AnthropicGenerator struct {
	client anthropic.Client
	opts   Options
	logger *zap.Logger
}

var _ repository.HTMLGenerator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator creates an HTML generator backed by Claude.
func NewAnthropicGenerator(opts Options, logger *zap.Logger) *AnthropicGenerator {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &AnthropicGenerator{
		client: anthropic.NewClient(clientOpts...),
		opts:   opts,
		logger: logger.Named("anthropic").With(zap.String("model", opts.Model)),
	}
}

func (g *AnthropicGenerator) Provider() string {
	return providerName
}

func (g *AnthropicGenerator) Generate(ctx context.Context, params repository.GenerateParams) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if params.ScreenshotBase64 != "" {
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", params.ScreenshotBase64))
	}
	blocks = append(blocks, anthropic.NewTextBlock(params.Prompt))

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.opts.Model),
		MaxTokens:   int64(g.opts.MaxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(g.opts.Temperature),
	}
	if params.SystemPrompt != "" {
		req.System = []anthropic.TextBlockParam{{Text: params.SystemPrompt}}
	}

	resp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}

	g.logger.Debug("Received AI response",
		zap.String("stop_reason", string(resp.StopReason)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)

	if sb.Len() == 0 {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}
