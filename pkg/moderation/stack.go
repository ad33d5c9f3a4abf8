package moderation

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/moderationapi"
	"github.com/sirupsen/logrus"
)

// lowRiskCutoff is the keyword score below which a safe classification lets
// the request skip the external moderation gate.
const lowRiskCutoff = mediumRiskScore

//go:generate mockery --name=Moderator --dir=. --output=./mocks --filename=moderator_mock.go --case=underscore --with-expecter

type Moderator interface {
	Moderate(ctx context.Context, content string) (*Result, error)
}

// Stack runs the five moderation layers in fixed order. Every layer may end
// the pipeline; later layers never revisit an earlier verdict.
type Stack struct {
	classifier Classifier
	bank       *ConceptBank
	gate       moderationapi.Gate
	logger     *logrus.Logger
}

func NewStack(classifier Classifier, bank *ConceptBank, gate moderationapi.Gate, logger *logrus.Logger) *Stack {
	return &Stack{
		classifier: classifier,
		bank:       bank,
		gate:       gate,
		logger:     logger,
	}
}

// Moderate never returns an error for provider failures; each layer degrades
// to its documented default and the pipeline continues.
func (s *Stack) Moderate(ctx context.Context, content string) (*Result, error) {
	// Layer 1: keyword risk. Informs later layers, never decides alone.
	riskScore := ScoreKeywords(content)

	// Layer 2: semantic classification, fail-open on provider errors.
	classification := s.classify(ctx, content)

	if classification.IsHumor && classification.Category == CategoryHumor {
		return &Result{
			Allowed:   true,
			Category:  CategoryHumor,
			Severity:  classification.Severity,
			Target:    classification.Target,
			RiskScore: riskScore,
			Layer:     LayerClassifier,
			Details:   map[string]any{"reasoning": classification.Reasoning},
		}, nil
	}

	// Layer 3: embedding similarity against the harmful-concept bank.
	if verdict := s.matchConcepts(ctx, content, classification, riskScore); verdict != nil {
		return verdict, nil
	}

	// Layer 4: deterministic business rules over the classification.
	if allowed, reason := applyRules(classification); !allowed {
		return &Result{
			Allowed:     false,
			Category:    classification.Category,
			Severity:    classification.Severity,
			Target:      classification.Target,
			RiskScore:   maxScore(riskScore, highRiskScore),
			Layer:       LayerBusinessRules,
			BlockReason: reason,
			Details:     map[string]any{"reasoning": classification.Reasoning},
		}, nil
	}

	// Layer 5: external moderation gate, skipped for cheap obvious passes.
	if classification.Category != CategorySafe || riskScore >= lowRiskCutoff {
		if verdict := s.moderateExternal(ctx, content, classification, riskScore); verdict != nil {
			return verdict, nil
		}
	}

	return &Result{
		Allowed:   true,
		Category:  classification.Category,
		Severity:  classification.Severity,
		Target:    classification.Target,
		RiskScore: riskScore,
		Layer:     LayerBusinessRules,
	}, nil
}

func (s *Stack) classify(ctx context.Context, content string) *Classification {
	if s.classifier == nil {
		return SafeClassification()
	}
	classification, err := s.classifier.Classify(ctx, content)
	if err != nil {
		s.logger.WithError(err).Warn("semantic classifier unavailable, continuing with safe default")
		return SafeClassification()
	}
	return classification
}

func (s *Stack) matchConcepts(ctx context.Context, content string, classification *Classification, riskScore float64) *Result {
	if s.bank == nil || !s.bank.Enabled() {
		return nil
	}
	match, err := s.bank.Match(ctx, content)
	if err != nil {
		// Provider failure is treated as "no match", not as a block.
		s.logger.WithError(err).Warn("embedding similarity lookup failed")
		return nil
	}
	if match == nil || match.Score < s.bank.Threshold() {
		return nil
	}
	return &Result{
		Allowed:     false,
		Category:    conceptCategory(match.Key),
		Severity:    SeverityCritical,
		Target:      classification.Target,
		RiskScore:   maxScore(riskScore, match.Score),
		Layer:       LayerEmbedding,
		BlockReason: "content closely matches known harmful material",
		Details: map[string]any{
			"concept":    match.Key,
			"similarity": match.Score,
		},
	}
}

func (s *Stack) moderateExternal(ctx context.Context, content string, classification *Classification, riskScore float64) *Result {
	if s.gate == nil {
		return nil
	}
	verdict, err := s.gate.Moderate(ctx, content)
	if err != nil {
		s.logger.WithError(err).Warn("moderation API unavailable, continuing without it")
		return nil
	}
	if !verdict.Flagged {
		return nil
	}
	return &Result{
		Allowed:     false,
		Category:    classification.Category,
		Severity:    SeverityHigh,
		Target:      classification.Target,
		RiskScore:   maxScore(riskScore, highRiskScore),
		Layer:       LayerModerationAPI,
		BlockReason: "content flagged by moderation provider",
		Details: map[string]any{
			"flagged_categories": verdict.FlaggedCategories,
		},
	}
}

// conceptCategory maps a matched concept cluster back into the taxonomy.
func conceptCategory(conceptKey string) Category {
	switch conceptKey {
	case "child_exploitation":
		return CategoryChildSafety
	case "suicide_methods":
		return CategorySelfHarm
	case "terrorism_planning":
		return CategoryExtremist
	case "hate_dehumanization":
		return CategoryHate
	case "drug_synthesis", "doxxing_stalking":
		return CategoryIllegal
	default:
		return CategoryViolent
	}
}

func maxScore(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
