package models

import "strings"

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGroq      Provider = "groq"
	ProviderDeepSeek  Provider = "deepseek"
)

var providerLabels = map[Provider]string{
	ProviderGoogle:    "Google Gemini",
	ProviderOpenAI:    "OpenAI",
	ProviderAnthropic: "Anthropic Claude",
	ProviderGroq:      "Groq",
	ProviderDeepSeek:  "DeepSeek",
}

func (p Provider) Valid() bool {
	_, ok := providerLabels[p]
	return ok
}

// Label returns the user-facing provider name used in credential
// verification messages.
func (p Provider) Label() string {
	if label, ok := providerLabels[p]; ok {
		return label
	}
	return string(p)
}

// Credentials pairs a provider with its API key. The analysis pipeline never
// persists credentials; storage is the credential store's concern.
type Credentials struct {
	Provider Provider `json:"provider"`
	Key      string   `json:"key"`
}

// HasKey reports whether the key is usable after trimming whitespace.
func (c Credentials) HasKey() bool {
	return strings.TrimSpace(c.Key) != ""
}
