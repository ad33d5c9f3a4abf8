package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers"
	factorymocks "github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers/factory/mocks"
	providermocks "github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers/mocks"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(client providers.Client) moderation.Classifier {
	locator := new(factorymocks.ProviderLocator)
	locator.On("Get", "openai").Return(client, nil)
	return moderation.NewLLMClassifier(locator, quietLogger(), moderation.ClassifierConfig{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		ApiKey:   "test-key",
	})
}

func TestLLMClassifier_ParsesResponse(t *testing.T) {
	client := new(providermocks.Client)
	client.On("Ask", mock.Anything, mock.Anything, "is water wet").Return(&providers.CompletionResponse{
		Response: `{"category":"humor","severity":"none","target":"none","is_humor":true,"is_fictional":false,"reasoning":"absurdist"}`,
	}, nil)

	classifier := newTestClassifier(client)
	classification, err := classifier.Classify(context.Background(), "is water wet")

	require.NoError(t, err)
	assert.Equal(t, moderation.CategoryHumor, classification.Category)
	assert.Equal(t, moderation.SeverityNone, classification.Severity)
	assert.True(t, classification.IsHumor)
	assert.Equal(t, "absurdist", classification.Reasoning)
}

func TestLLMClassifier_StripsMarkdownFence(t *testing.T) {
	client := new(providermocks.Client)
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).Return(&providers.CompletionResponse{
		Response: "```json\n{\"category\":\"political\",\"severity\":\"low\",\"target\":\"group\"}\n```",
	}, nil)

	classifier := newTestClassifier(client)
	classification, err := classifier.Classify(context.Background(), "should voting be mandatory")

	require.NoError(t, err)
	assert.Equal(t, moderation.CategoryPolitical, classification.Category)
	assert.Equal(t, moderation.SeverityLow, classification.Severity)
}

func TestLLMClassifier_UnknownCategoryBecomesControversial(t *testing.T) {
	client := new(providermocks.Client)
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).Return(&providers.CompletionResponse{
		Response: `{"category":"spicy","severity":"weird","target":"none"}`,
	}, nil)

	classifier := newTestClassifier(client)
	classification, err := classifier.Classify(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, moderation.CategoryControversial, classification.Category)
	assert.Equal(t, moderation.SeverityMedium, classification.Severity)
}

func TestLLMClassifier_ProviderErrorBubblesUp(t *testing.T) {
	client := new(providermocks.Client)
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	classifier := newTestClassifier(client)
	_, err := classifier.Classify(context.Background(), "anything")

	assert.Error(t, err)
}

func TestLLMClassifier_MalformedJSONErrors(t *testing.T) {
	client := new(providermocks.Client)
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).Return(&providers.CompletionResponse{
		Response: "I cannot classify that.",
	}, nil)

	classifier := newTestClassifier(client)
	_, err := classifier.Classify(context.Background(), "anything")

	assert.Error(t, err)
}

func TestLLMClassifier_UnknownProviderErrors(t *testing.T) {
	locator := new(factorymocks.ProviderLocator)
	locator.On("Get", "nonsense").Return(nil, errors.New("unsupported provider: nonsense"))

	classifier := moderation.NewLLMClassifier(locator, quietLogger(), moderation.ClassifierConfig{
		Provider: "nonsense",
	})
	_, err := classifier.Classify(context.Background(), "anything")

	assert.Error(t, err)
}

func TestLLMClassifier_SendsSystemPromptAndCredentials(t *testing.T) {
	client := new(providermocks.Client)
	client.On("Ask", mock.Anything, mock.MatchedBy(func(cfg *providers.Config) bool {
		return cfg.SystemPrompt != "" &&
			cfg.Credentials.ApiKey == "test-key" &&
			cfg.Model == "gpt-4o-mini" &&
			cfg.MaxTokens == 500
	}), mock.Anything).Return(&providers.CompletionResponse{
		Response: `{"category":"safe","severity":"none","target":"none"}`,
	}, nil)

	classifier := newTestClassifier(client)
	_, err := classifier.Classify(context.Background(), "anything")

	require.NoError(t, err)
	client.AssertExpectations(t)
}
