package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

type anthropicClient struct {
	endpoint string
	key      string
	http     *http.Client
}

func newAnthropicClient(creds models.Credentials) (*anthropicClient, error) {
	return &anthropicClient{
		endpoint: anthropicEndpoint,
		key:      strings.TrimSpace(creds.Key),
		http:     &http.Client{},
	}, nil
}

func (c *anthropicClient) Provider() models.Provider { return models.ProviderAnthropic }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	const op = "llm.anthropic.Complete"

	body, err := json.Marshal(anthropicRequest{
		Model:       opts.modelOr(DefaultModel(models.ProviderAnthropic)),
		MaxTokens:   opts.maxTokensOr(DefaultMaxTokens),
		Temperature: opts.temperatureOr(DefaultTemperature),
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.Internal(op, err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Internal(op, err, "failed to build request")
	}
	req.Header.Set("x-api-key", c.key)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("anthropic-version", anthropicVersion)

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

	var decoded anthropicResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", errors.Internal(op, err, "failed to decode provider response")
	}
	if len(decoded.Content) == 0 {
		return "", errors.Internal(op, nil, "provider returned empty content")
	}

	return decoded.Content[0].Text, nil
}

func (c *anthropicClient) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, pingPrompt, Options{MaxTokens: pingMaxTokens})
	if err != nil {
		return pingError(models.ProviderAnthropic, err)
	}
	return nil
}
