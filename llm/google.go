package llm

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"

	"google.golang.org/genai"
)

type googleClient struct {
	client *genai.Client
}

func newGoogleClient(creds models.Credentials) (*googleClient, error) {
	const op = "llm.newGoogleClient"

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: strings.TrimSpace(creds.Key),
	})
	if err != nil {
		return nil, errors.Configuration(op, err, "failed to create Gemini client")
	}

	return &googleClient{client: client}, nil
}

func (c *googleClient) Provider() models.Provider { return models.ProviderGoogle }

func (c *googleClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	const op = "llm.google.Complete"

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.temperatureOr(DefaultTemperature))),
		MaxOutputTokens: int32(opts.maxTokensOr(DefaultMaxTokens)),
	}

	result, err := c.client.Models.GenerateContent(ctx, opts.modelOr(DefaultModel(models.ProviderGoogle)), contents, config)
	if err != nil {
		return "", classifyGenAIErr(op, err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.Internal(op, nil, "provider returned an empty response")
	}

	return text, nil
}

func (c *googleClient) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, pingPrompt, Options{MaxTokens: pingMaxTokens})
	if err != nil {
		return pingError(models.ProviderGoogle, err)
	}
	return nil
}

// classifyGenAIErr maps SDK failures through the APIError status code so
// retry decisions stay explicit.
func classifyGenAIErr(op string, err error) *errors.AppError {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return classifyHTTP(op, apiErr.Code, apiErr.Message)
	}
	return classifyCallErr(op, err)
}
