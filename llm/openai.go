package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"
)

// Endpoints for the providers that speak the OpenAI chat-completions shape.
var chatEndpoints = map[models.Provider]string{
	models.ProviderOpenAI:   "https://api.openai.com/v1/chat/completions",
	models.ProviderGroq:     "https://api.groq.com/openai/v1/chat/completions",
	models.ProviderDeepSeek: "https://api.deepseek.com/v1/chat/completions",
}

type openAICompatClient struct {
	provider models.Provider
	endpoint string
	key      string
	http     *http.Client
}

func newOpenAICompatClient(creds models.Credentials) (*openAICompatClient, error) {
	endpoint, ok := chatEndpoints[creds.Provider]
	if !ok {
		return nil, errors.Configuration("llm.newOpenAICompatClient", nil,
			fmt.Sprintf("no chat endpoint for provider: %s", creds.Provider))
	}
	return &openAICompatClient{
		provider: creds.Provider,
		endpoint: endpoint,
		key:      strings.TrimSpace(creds.Key),
		http:     &http.Client{},
	}, nil
}

func (c *openAICompatClient) Provider() models.Provider { return c.provider }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAICompatClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	const op = "llm.openAICompat.Complete"

	body, err := json.Marshal(chatRequest{
		Model:       opts.modelOr(DefaultModel(c.provider)),
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.temperatureOr(DefaultTemperature),
		MaxTokens:   opts.maxTokensOr(DefaultMaxTokens),
	})
	if err != nil {
		return "", errors.Internal(op, err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Internal(op, err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyCallErr(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Transport(op, err, "failed to read provider response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTP(op, resp.StatusCode, string(respBody))
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", errors.Internal(op, err, "failed to decode provider response")
	}
	if len(decoded.Choices) == 0 {
		return "", errors.Internal(op, nil, "provider returned no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

func (c *openAICompatClient) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, pingPrompt, Options{MaxTokens: pingMaxTokens})
	if err != nil {
		return pingError(c.provider, err)
	}
	return nil
}
