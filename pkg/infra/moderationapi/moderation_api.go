package moderationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const OpenAIModerationURL = "https://api.openai.com/v1/moderations"

// DefaultThresholds are tuned tighter than the provider's own flagging.
// Child-safety triggers far below the provider default, while the violence
// threshold is deliberately raised so hypothetical debate topics
// ("fight a giant duck") are not swept up by literal phrasing.
var DefaultThresholds = map[string]float64{
	"sexual/minors":          0.02,
	"sexual":                 0.50,
	"hate":                   0.40,
	"hate/threatening":       0.30,
	"harassment":             0.60,
	"harassment/threatening": 0.40,
	"self-harm":              0.30,
	"self-harm/intent":       0.30,
	"self-harm/instructions": 0.20,
	"violence":               0.85,
	"violence/graphic":       0.70,
	"illicit":                0.50,
	"illicit/violent":        0.40,
}

// Verdict is the gate's answer. Flagged is true when either the provider's
// own verdict or one of the custom thresholds fired.
type Verdict struct {
	Flagged           bool               `json:"flagged"`
	FlaggedCategories []string           `json:"flagged_categories,omitempty"`
	CategoryScores    map[string]float64 `json:"category_scores,omitempty"`
}

//go:generate mockery --name=Gate --dir=. --output=./mocks --filename=moderation_gate_mock.go --case=underscore --with-expecter

type Gate interface {
	Moderate(ctx context.Context, content string) (*Verdict, error)
}

type moderationRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

type moderationResult struct {
	Flagged        bool               `json:"flagged"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

type moderationResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Results []moderationResult `json:"results"`
}

type gate struct {
	client     httpx.Client
	breaker    httpx.CircuitBreaker
	logger     *logrus.Logger
	apiKey     string
	thresholds map[string]float64
}

func NewGate(
	client httpx.Client,
	logger *logrus.Logger,
	apiKey string,
	thresholds map[string]float64,
) Gate {
	if client == nil {
		client = &http.Client{}
	}
	if thresholds == nil {
		thresholds = DefaultThresholds
	}
	return &gate{
		client:     client,
		breaker:    httpx.NewCircuitBreaker("moderation_api", 30*time.Second, 5),
		logger:     logger,
		apiKey:     apiKey,
		thresholds: thresholds,
	}
}

// Moderate calls the provider's moderation endpoint and applies the custom
// thresholds on top of the provider verdict. Errors bubble up; the caller
// owns the fail-open decision.
func (g *gate) Moderate(ctx context.Context, content string) (*Verdict, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("moderation API key not configured")
	}

	jsonData, err := json.Marshal(moderationRequest{
		Input: content,
		Model: "omni-moderation-latest",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal moderation request: %w", err)
	}

	var body []byte
	err = g.breaker.Execute(func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, OpenAIModerationURL, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create HTTP request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

		httpResp, err := g.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()

		body, err = io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		if httpResp.StatusCode != http.StatusOK {
			return fmt.Errorf("moderation API returned %d: %s", httpResp.StatusCode, string(body))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var modResp moderationResponse
	if err := json.Unmarshal(body, &modResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moderation response: %w", err)
	}
	if len(modResp.Results) == 0 {
		return nil, fmt.Errorf("no moderation results returned")
	}

	result := modResp.Results[0]
	verdict := &Verdict{
		Flagged:        result.Flagged,
		CategoryScores: result.CategoryScores,
	}

	for category, score := range result.CategoryScores {
		threshold, exists := g.thresholds[category]
		if exists && score >= threshold {
			verdict.Flagged = true
			verdict.FlaggedCategories = append(verdict.FlaggedCategories, fmt.Sprintf("%s (%.2f)", category, score))
		}
	}
	if result.Flagged && len(verdict.FlaggedCategories) == 0 {
		for category, hit := range result.Categories {
			if hit {
				verdict.FlaggedCategories = append(verdict.FlaggedCategories, category)
			}
		}
	}
	return verdict, nil
}
