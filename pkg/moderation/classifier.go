package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers/factory"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Classifier --dir=. --output=./mocks --filename=classifier_mock.go --case=underscore --with-expecter

// Classifier is the external semantic-classification capability. An error
// return is a provider failure, not a verdict; the stack treats it as the
// documented fail-open default.
type Classifier interface {
	Classify(ctx context.Context, content string) (*Classification, error)
}

var classifierSystemPrompt = "You are a content classifier for a debate platform. " +
	"Classify the debate topic you receive into exactly one category from this fixed list: " +
	"\"safe\", \"humor\", \"political\", \"controversial\", \"extremist\", \"sexual\", " +
	"\"violent\", \"self_harm\", \"hate\", \"illegal\", \"child_safety\".\n\n" +
	"Also decide:\n" +
	"- severity: one of \"none\", \"low\", \"medium\", \"high\", \"critical\"\n" +
	"- target: who the content is directed at, one of \"none\", \"human\", \"group\", \"object\", \"animal\", \"fictional\"\n" +
	"- is_humor: true when the topic is absurdist, hypothetical or clearly joking (e.g. " +
	"\"would you rather fight a horse-sized duck\"), even if it mentions violence literally\n" +
	"- is_fictional: true when the scenario is clearly fictional or impossible\n\n" +
	"Return only a JSON object with keys: category, severity, target, is_humor, is_fictional, reasoning. " +
	"No markdown, no extra text. Lowercase booleans."

type ClassifierConfig struct {
	Provider  string  `mapstructure:"provider"`
	Model     string  `mapstructure:"model"`
	ApiKey    string  `mapstructure:"api_key"`
	MaxTokens int     `mapstructure:"max_tokens"`
	Temp      float64 `mapstructure:"temperature"`
}

type llmClassifier struct {
	locator factory.ProviderLocator
	logger  *logrus.Logger
	cfg     ClassifierConfig
}

func NewLLMClassifier(locator factory.ProviderLocator, logger *logrus.Logger, cfg ClassifierConfig) Classifier {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	return &llmClassifier{
		locator: locator,
		logger:  logger,
		cfg:     cfg,
	}
}

func (c *llmClassifier) Classify(ctx context.Context, content string) (*Classification, error) {
	client, err := c.locator.Get(c.cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get classifier provider: %w", err)
	}

	response, err := client.Ask(ctx, &providers.Config{
		Credentials: providers.Credentials{
			ApiKey: c.cfg.ApiKey,
		},
		Model:        c.cfg.Model,
		MaxTokens:    c.cfg.MaxTokens,
		Temperature:  c.cfg.Temp,
		SystemPrompt: classifierSystemPrompt,
	}, content)
	if err != nil {
		return nil, fmt.Errorf("classifier call failed: %w", err)
	}
	if response == nil {
		return nil, fmt.Errorf("classifier returned nil response")
	}

	raw := strings.TrimSpace(response.Response)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var classification Classification
	if err := json.Unmarshal([]byte(raw), &classification); err != nil {
		return nil, fmt.Errorf("failed to unmarshal classification: %w", err)
	}

	if !ValidCategory(classification.Category) {
		c.logger.WithField("category", classification.Category).Warn("classifier returned unknown category, treating as controversial")
		classification.Category = CategoryControversial
	}
	if !ValidSeverity(classification.Severity) {
		classification.Severity = SeverityMedium
	}
	return &classification, nil
}
