// Package llm provides a uniform client over the supported LLM backends.
// Callers send prompt text and get text back; provider-specific auth,
// request shapes, and SDK error types stay behind the Client interface.
package llm

import (
	"context"
	"fmt"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"
)

// Options tune a single completion call.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4096

	// pingMaxTokens keeps the liveness check nearly free.
	pingMaxTokens = 8
	pingPrompt    = "Reply with the single word: ok"
)

// Client is one provider bound to one credential.
type Client interface {
	// Complete sends prompt text and returns the model's text response.
	// Failures are classified into the project error taxonomy; no
	// provider-specific error shape escapes.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)

	// Ping performs a minimal-budget liveness call with no retries. A
	// failure is labeled with the provider's user-facing name.
	Ping(ctx context.Context) error

	// Provider identifies the backend this client talks to.
	Provider() models.Provider
}

var defaultModels = map[models.Provider]string{
	models.ProviderGoogle:    "gemini-2.0-flash",
	models.ProviderOpenAI:    "gpt-4o-mini",
	models.ProviderAnthropic: "claude-3-5-haiku-latest",
	models.ProviderGroq:      "llama-3.3-70b-versatile",
	models.ProviderDeepSeek:  "deepseek-chat",
}

// DefaultModel returns the model used when Options does not override it.
func DefaultModel(p models.Provider) string {
	return defaultModels[p]
}

// NewClient selects the provider implementation for the given credentials.
// This is the single composition point for provider branching.
func NewClient(creds models.Credentials) (Client, error) {
	const op = "llm.NewClient"

	if !creds.HasKey() {
		return nil, errors.Configuration(op, nil, "API key is required")
	}
	if !creds.Provider.Valid() {
		return nil, errors.Configuration(op, nil,
			fmt.Sprintf("unsupported provider: %s", creds.Provider))
	}

	switch creds.Provider {
	case models.ProviderGoogle:
		return newGoogleClient(creds)
	case models.ProviderAnthropic:
		return newAnthropicClient(creds)
	default:
		// OpenAI, Groq, and DeepSeek share the chat-completions shape.
		return newOpenAICompatClient(creds)
	}
}

// Verify runs the liveness check used by credential-setup flows. Errors are
// already provider-labeled by Ping.
func Verify(ctx context.Context, creds models.Credentials) error {
	client, err := NewClient(creds)
	if err != nil {
		return err
	}
	return client.Ping(ctx)
}

func (o Options) modelOr(fallback string) string {
	if o.Model != "" {
		return o.Model
	}
	return fallback
}

func (o Options) maxTokensOr(fallback int) int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return fallback
}

func (o Options) temperatureOr(fallback float64) float64 {
	if o.Temperature > 0 {
		return o.Temperature
	}
	return fallback
}

// pingError wraps a liveness failure with the provider's label so setup UIs
// can show "<ProviderLabel>: <reason>".
func pingError(p models.Provider, err error) error {
	const op = "llm.Ping"
	var appErr *errors.AppError
	if e, ok := err.(*errors.AppError); ok {
		appErr = e
	} else {
		appErr = errors.Transport(op, err, "liveness check failed")
	}
	return &errors.AppError{
		Kind:    appErr.Kind,
		Code:    appErr.Code,
		Message: fmt.Sprintf("%s: %s", p.Label(), appErr.Message),
		Op:      op,
		Err:     appErr.Err,
	}
}
