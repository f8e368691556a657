package openai_generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/user/cloner-service/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultModel = "gpt-4o"
	providerName = "openai"
)

var errNoChoices = errors.New("openai returned no choices")

// Options configure the chat completions call. BaseURL may point at any
// OpenAI-compatible endpoint.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type OpenAIGenerator struct {
	client openai.Client
	opts   Options
	logger *zap.Logger
}

var _ repository.HTMLGenerator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(opts Options, logger *zap.Logger) *OpenAIGenerator {
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

	return &OpenAIGenerator{
		client: openai.NewClient(clientOpts...),
		opts:   opts,
		logger: logger.Named("openai").With(zap.String("model", opts.Model)),
	}
}

func (g *OpenAIGenerator) Provider() string {
	return providerName
}

func (g *OpenAIGenerator) Generate(ctx context.Context, params repository.GenerateParams) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if params.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(params.SystemPrompt))
	}
	messages = append(messages, userMessage(params))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(g.opts.Model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(g.opts.MaxTokens)),
		Temperature:         openai.Float(g.opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	g.logger.Debug("Received AI response",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// userMessage sends the screenshot as a data URL image part ahead of the prompt text.
func userMessage(params repository.GenerateParams) openai.ChatCompletionMessageParamUnion {
	if params.ScreenshotBase64 == "" {
		return openai.UserMessage(params.Prompt)
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		{OfImageURL: &openai.ChatCompletionContentPartImageParam{
			ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
				URL:    "data:image/png;base64," + params.ScreenshotBase64,
				Detail: "auto",
			},
		}},
		{OfText: &openai.ChatCompletionContentPartTextParam{Text: params.Prompt}},
	}
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts},
		},
	}
}
