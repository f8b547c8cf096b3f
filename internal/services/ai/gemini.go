package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the default Gemini model
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements CompletionProvider using the Gemini generateContent API
type GeminiProvider struct {
	client    *genai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// GeminiOptions configures a GeminiProvider
type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	DebugMode  bool
}

// NewGeminiProvider creates a Gemini provider backed by the Gemini Developer API
func NewGeminiProvider(ctx context.Context, opts GeminiOptions) (*GeminiProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api_key is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     opts.Model,
		logger:    opts.Logger,
		debugMode: opts.DebugMode,
	}, nil
}

// Model returns the configured model
func (p *GeminiProvider) Model() string {
	return p.model
}

// Complete sends one generateContent request with the system instruction set
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	req = withDefaults(req)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens:   int32(req.MaxTokens),
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			append([]zap.Field{
				zap.String("operation", req.Operation),
				zap.String("provider", "gemini"),
				zap.String("model", p.model),
				zap.Int("system_length", len(req.SystemInstruction)),
				zap.String("system_preview", SanitizePrompt(req.SystemInstruction, true)),
				zap.String("message_preview", SanitizePrompt(req.UserMessage, false)),
			}, requestFields(ctx)...)...,
		)
	}

	start := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.UserMessage), config)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				append([]zap.Field{
					zap.String("operation", req.Operation),
					zap.String("provider", "gemini"),
					zap.String("model", p.model),
					zap.Error(err),
					zap.Int64("latency_ms", latency.Milliseconds()),
				}, requestFields(ctx)...)...,
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to generate content: %w", apiErr)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	content := resp.Text()

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			append([]zap.Field{
				zap.String("operation", req.Operation),
				zap.String("provider", "gemini"),
				zap.String("model", p.model),
				zap.Int("candidates", len(resp.Candidates)),
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

// RegisterGemini registers the Gemini provider with the registry
func RegisterGemini(registry *ProviderRegistry) {
	registry.Register("gemini", func(config map[string]string, logger *zap.Logger) (CompletionProvider, error) {
		timeout, err := parseTimeout(config["timeout"])
		if err != nil {
			return nil, err
		}

		return NewGeminiProvider(context.Background(), GeminiOptions{
			APIKey:    config["api_key"],
			BaseURL:   config["base_url"],
			Model:     config["model"],
			Timeout:   timeout,
			Logger:    logger,
			DebugMode: config["debug"] == "true",
		})
	})
}
