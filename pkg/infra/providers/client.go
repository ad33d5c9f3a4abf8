package providers

import (
	"context"
)

type Config struct {
	Credentials  Credentials `json:"credentials"`
	Model        string      `json:"model"`
	MaxTokens    int         `json:"max_tokens,omitempty"`
	Temperature  float64     `json:"temperature,omitempty"`
	SystemPrompt string      `json:"system_prompt,omitempty"`
}

type Credentials struct {
	ApiKey string `json:"api_key"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter

// Client is an LLM completion provider used by the semantic classifier.
type Client interface {
	Ask(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error)
}

// CompletionResponse is the provider-agnostic shape of a completion.
type CompletionResponse struct {
	ID       string `json:"id"`
	Model    string `json:"model"`
	Response string `json:"response"`
	Usage    Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
