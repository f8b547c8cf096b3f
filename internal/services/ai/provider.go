package ai

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

const (
	// DefaultTemperature is the sampling temperature used for every completion
	DefaultTemperature = 0.7
	// DefaultMaxTokens caps the length of every completion
	DefaultMaxTokens = 800
	// FallbackResponse is returned when the model produces no usable text
	FallbackResponse = "Sorry, I could not generate a response."
)

// CompletionRequest is one single-turn completion: a system instruction and
// the user's message.
type CompletionRequest struct {
	SystemInstruction string
	UserMessage       string
	Temperature       float64
	MaxTokens         int
	// Operation names the caller in logs (chat, health_report, cli)
	Operation string
}

// CompletionProvider is the interface for language model backends
type CompletionProvider interface {
	// Complete sends the request once and returns the model's text
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Model returns the model identifier requests are sent to
	Model() string
}

// ProviderFactory creates a completion provider from string settings. The
// logger may be nil.
type ProviderFactory func(config map[string]string, logger *zap.Logger) (CompletionProvider, error)

// ProviderRegistry stores available completion providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// DefaultRegistry returns a registry with every built-in provider registered
func DefaultRegistry() *ProviderRegistry {
	registry := NewProviderRegistry()
	RegisterOpenAI(registry)
	RegisterGemini(registry)
	return registry
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string, logger *zap.Logger) (CompletionProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config, logger)
}

// Names lists the registered provider names in sorted order
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

func withDefaults(req CompletionRequest) CompletionRequest {
	if req.Temperature <= 0 {
		req.Temperature = DefaultTemperature
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if req.Operation == "" {
		req.Operation = "chat"
	}
	return req
}
