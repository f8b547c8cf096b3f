package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
)

// OpenAIProvider implements CompletionProvider using the OpenAI chat completions API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// OpenAIOptions configures an OpenAIProvider
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	DebugMode  bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithOptions(OpenAIOptions{APIKey: apiKey, Model: model})
}

// NewOpenAIProviderWithOptions creates a new OpenAI provider. The SDK's own
// retries are disabled: every Complete call is exactly one HTTP request.
func NewOpenAIProviderWithOptions(opts OpenAIOptions) *OpenAIProvider {
	if opts.Model == "" {
		opts.Model = DefaultOpenAIModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenAIBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
		}
	}

	client := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:    client,
		model:     opts.Model,
		logger:    opts.Logger,
		debugMode: opts.DebugMode,
	}
}

// Model returns the configured model
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends one chat completion with a system and a user message
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	req = withDefaults(req)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemInstruction),
			openai.UserMessage(req.UserMessage),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			append([]zap.Field{
				zap.String("operation", req.Operation),
				zap.String("provider", "openai"),
				zap.String("model", p.model),
				zap.Int("system_length", len(req.SystemInstruction)),
				zap.String("system_preview", SanitizePrompt(req.SystemInstruction, true)),
				zap.String("message_preview", SanitizePrompt(req.UserMessage, false)),
			}, requestFields(ctx)...)...,
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				append([]zap.Field{
					zap.String("operation", req.Operation),
					zap.String("provider", "openai"),
					zap.String("model", p.model),
					zap.Error(err),
					zap.Int64("latency_ms", latency.Milliseconds()),
				}, requestFields(ctx)...)...,
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to complete chat: %w", apiErr)
		}
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			append([]zap.Field{
				zap.String("operation", req.Operation),
				zap.String("provider", "openai"),
				zap.String("model", p.model),
				zap.Int("choices", len(resp.Choices)),
				zap.Int("response_length", len(content)),
				zap.String("response_preview", SanitizeResponse(content, true)),
				zap.Int64("latency_ms", latency.Milliseconds()),
			}, requestFields(ctx)...)...,
		)
	}

	if strings.TrimSpace(content) == "" {
		return FallbackResponse, nil
	}
	return content, nil
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string, logger *zap.Logger) (CompletionProvider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		timeout, err := parseTimeout(config["timeout"])
		if err != nil {
			return nil, err
		}

		return NewOpenAIProviderWithOptions(OpenAIOptions{
			APIKey:    apiKey,
			BaseURL:   config["base_url"],
			Model:     config["model"],
			Timeout:   timeout,
			Logger:    logger,
			DebugMode: config["debug"] == "true",
		}), nil
	})
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", value, err)
	}
	return d, nil
}
