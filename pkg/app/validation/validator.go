package validation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/contentfilter"
	domainabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/identity"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/moderation"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/sanitize"
	"github.com/sirupsen/logrus"
)

// policyViolationMessage is deliberately non-specific so rejections do not
// teach callers which pattern or layer fired.
const policyViolationMessage = "This content violates our content policy"

//go:generate mockery --name=Validator --dir=. --output=./mocks --filename=validator_mock.go --case=underscore --with-expecter

// Validator is the single entry point for content validation. The security
// context is optional; without it, abuse side effects are skipped.
type Validator interface {
	ValidateDebateTopic(ctx context.Context, topic string, secCtx *identity.SecurityContext) *Result
	ValidateCustomRules(ctx context.Context, rules []string, secCtx *identity.SecurityContext) *Result
	ValidateAndSanitizeDebateConfig(ctx context.Context, cfg DebateConfig, secCtx *identity.SecurityContext) *ConfigResult
}

type validator struct {
	filter    *contentfilter.Filter
	moderator moderation.Moderator
	tracker   abuse.Tracker
	hasher    *identity.Hasher
	logger    *logrus.Logger
}

func NewValidator(
	filter *contentfilter.Filter,
	moderator moderation.Moderator,
	tracker abuse.Tracker,
	hasher *identity.Hasher,
	logger *logrus.Logger,
) Validator {
	return &validator{
		filter:    filter,
		moderator: moderator,
		tracker:   tracker,
		hasher:    hasher,
		logger:    logger,
	}
}

// ValidateDebateTopic runs the full pipeline for one topic. The dangerous
// pattern probe sees the raw input before any sanitization, so encoding
// tricks cannot launder an injection through the sanitizer.
func (v *validator) ValidateDebateTopic(ctx context.Context, topic string, secCtx *identity.SecurityContext) *Result {
	if strings.TrimSpace(topic) == "" {
		return &Result{Errors: []string{"topic is required"}}
	}

	if sanitize.ContainsDangerousPatterns(topic) {
		v.recordSecurityEvent(ctx, secCtx, domainabuse.EventPromptInjection, domainabuse.EventSeverityHigh, "debate_topic", map[string]any{
			"patterns": patternNames(sanitize.DetectDangerousPatterns(topic)),
		})
		return &Result{
			Blocked:          true,
			BlockReason:      policyViolationMessage,
			ModerationSource: "pattern_detection",
		}
	}

	sanitized := sanitize.Sanitize(topic, sanitize.Options{Context: sanitize.ContextLLM}).Value

	if errs := checkTopicLength(sanitized); len(errs) > 0 {
		return &Result{Errors: errs}
	}

	if blocked := v.runFilter(ctx, sanitized, "debate_topic", secCtx); blocked != nil {
		return blocked
	}

	if blocked := v.runModeration(ctx, sanitized, "debate_topic", secCtx); blocked != nil {
		return blocked
	}

	return &Result{Valid: true, SanitizedValue: sanitized}
}

// ValidateCustomRules validates every rule and aggregates the item errors
// instead of failing on the first bad one.
func (v *validator) ValidateCustomRules(ctx context.Context, rules []string, secCtx *identity.SecurityContext) *Result {
	if len(rules) > common.MaxCustomRules {
		return &Result{Errors: []string{fmt.Sprintf("too many rules: maximum is %d", common.MaxCustomRules)}}
	}

	result := &Result{Valid: true}
	sanitizedRules := make([]string, 0, len(rules))

	for i, rule := range rules {
		label := fmt.Sprintf("rule %d", i+1)

		if strings.TrimSpace(rule) == "" {
			result.addError(label + ": rule cannot be empty")
			continue
		}

		if sanitize.ContainsDangerousPatterns(rule) {
			v.recordSecurityEvent(ctx, secCtx, domainabuse.EventPromptInjection, domainabuse.EventSeverityHigh, "custom_rules", map[string]any{
				"rule_index": i,
			})
			result.Valid = false
			result.Blocked = true
			result.BlockReason = policyViolationMessage
			result.ModerationSource = "pattern_detection"
			continue
		}

		sanitized := sanitize.Sanitize(rule, sanitize.Options{Context: sanitize.ContextLLM}).Value
		if utf8.RuneCountInString(sanitized) > common.RuleMaxLength {
			result.addError(fmt.Sprintf("%s: must be at most %d characters", label, common.RuleMaxLength))
			continue
		}

		if blocked := v.runFilter(ctx, sanitized, "custom_rules", secCtx); blocked != nil {
			result.Valid = false
			result.Blocked = true
			result.BlockReason = blocked.BlockReason
			result.ModerationSource = blocked.ModerationSource
			continue
		}

		if blocked := v.runModeration(ctx, sanitized, "custom_rules", secCtx); blocked != nil {
			result.Valid = false
			result.Blocked = true
			result.BlockReason = blocked.BlockReason
			result.ModerationSource = blocked.ModerationSource
			continue
		}

		sanitizedRules = append(sanitizedRules, sanitized)
	}

	if result.Valid {
		result.SanitizedValues = sanitizedRules
	}
	return result
}

// ValidateAndSanitizeDebateConfig composes topic and rule validation with
// the closed-enum checks. The sanitized config is all-or-nothing.
func (v *validator) ValidateAndSanitizeDebateConfig(ctx context.Context, cfg DebateConfig, secCtx *identity.SecurityContext) *ConfigResult {
	out := &ConfigResult{Valid: true}
	sanitized := &DebateConfig{TurnCount: cfg.TurnCount, Format: cfg.Format}

	topicResult := v.ValidateDebateTopic(ctx, cfg.Topic, secCtx)
	out.merge(topicResult)
	sanitized.Topic = topicResult.SanitizedValue

	if len(cfg.Rules) > 0 {
		rulesResult := v.ValidateCustomRules(ctx, cfg.Rules, secCtx)
		out.merge(rulesResult)
		sanitized.Rules = rulesResult.SanitizedValues
	}

	if !allowedTurnCounts[cfg.TurnCount] {
		out.Valid = false
		out.Errors = append(out.Errors, "turn count must be one of 6, 8, 10 or 12")
	}
	if !allowedFormats[cfg.Format] {
		out.Valid = false
		out.Errors = append(out.Errors, "format must be one of standard, oxford, lincoln_douglas or rapid_fire")
	}

	if out.Valid {
		out.SanitizedConfig = sanitized
	}
	return out
}

// runFilter is the regex fast path. A blocking match short-circuits before
// any provider call is made.
func (v *validator) runFilter(ctx context.Context, content, endpoint string, secCtx *identity.SecurityContext) *Result {
	filterResult, err := v.filter.FilterContent(content, contentfilter.Config{
		CheckProfanity:       true,
		CheckPromptInjection: true,
		CheckHarmfulContent:  true,
	})
	if err != nil {
		v.logger.WithError(err).Error("content filter failed, continuing to moderation")
		return nil
	}

	if filterResult.ShouldLog && !filterResult.ShouldBlock {
		v.recordSecurityEvent(ctx, secCtx, domainabuse.EventSuspiciousPattern, domainabuse.EventSeverityMedium, endpoint, map[string]any{
			"match_count": len(filterResult.Matches),
		})
	}
	if !filterResult.ShouldBlock {
		return nil
	}

	eventType := domainabuse.EventContentViolation
	source := "content_filter"
	if v.filter.IsPromptInjection(content) {
		eventType = domainabuse.EventPromptInjection
		source = "pattern_detection"
	}
	v.recordSecurityEvent(ctx, secCtx, eventType, domainabuse.EventSeverityHigh, endpoint, map[string]any{
		"match_count": len(filterResult.Matches),
	})
	return &Result{
		Blocked:          true,
		BlockReason:      policyViolationMessage,
		ModerationSource: source,
	}
}

func (v *validator) runModeration(ctx context.Context, content, endpoint string, secCtx *identity.SecurityContext) *Result {
	modResult, err := v.moderator.Moderate(ctx, content)
	if err != nil {
		v.logger.WithError(err).Error("moderation stack failed, allowing content")
		return nil
	}
	if modResult.Allowed {
		return nil
	}

	prometheus.ModerationBlocks.WithLabelValues(string(modResult.Layer), string(modResult.Category)).Inc()
	v.recordSecurityEvent(ctx, secCtx, domainabuse.EventContentViolation, severityFor(modResult.Severity), endpoint, map[string]any{
		"category":   string(modResult.Category),
		"layer":      string(modResult.Layer),
		"risk_score": modResult.RiskScore,
	})
	return &Result{
		Blocked:          true,
		BlockReason:      blockReasonFor(modResult.Category),
		ModerationSource: string(modResult.Layer),
	}
}

// recordSecurityEvent is best-effort: failures are logged and never change
// the verdict.
func (v *validator) recordSecurityEvent(
	ctx context.Context,
	secCtx *identity.SecurityContext,
	eventType domainabuse.EventType,
	severity domainabuse.EventSeverity,
	endpoint string,
	details map[string]any,
) {
	if secCtx == nil || secCtx.IP == "" || v.tracker == nil {
		return
	}
	ipHash := v.hasher.HashIP(secCtx.IP)
	if err := v.tracker.RecordEvent(ctx, abuse.Event{
		IPHash:   ipHash,
		Type:     eventType,
		Severity: severity,
		Endpoint: endpoint,
		Details:  details,
	}); err != nil {
		v.logger.WithError(err).WithField("event_type", eventType).Warn("failed to record abuse event")
	}
}

func checkTopicLength(sanitized string) []string {
	length := utf8.RuneCountInString(sanitized)
	var errs []string
	if length < common.TopicMinLength {
		errs = append(errs, fmt.Sprintf("topic must be at least %d characters", common.TopicMinLength))
	}
	if length > common.TopicMaxLength {
		errs = append(errs, fmt.Sprintf("topic must be at most %d characters", common.TopicMaxLength))
	}
	return errs
}

// blockReasonFor maps the internal taxonomy onto a small set of user-facing
// messages. Kept vague on purpose.
func blockReasonFor(category moderation.Category) string {
	switch category {
	case moderation.CategoryChildSafety, moderation.CategoryExtremist, moderation.CategoryIllegal:
		return "This topic is not permitted on this platform"
	case moderation.CategorySelfHarm:
		return "This topic cannot be debated here. If you're struggling, please reach out for support"
	default:
		return policyViolationMessage
	}
}

func severityFor(s moderation.Severity) domainabuse.EventSeverity {
	switch s {
	case moderation.SeverityCritical:
		return domainabuse.EventSeverityCritical
	case moderation.SeverityHigh:
		return domainabuse.EventSeverityHigh
	case moderation.SeverityMedium:
		return domainabuse.EventSeverityMedium
	default:
		return domainabuse.EventSeverityLow
	}
}

func patternNames(patterns []sanitize.PatternType) []string {
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = string(p)
	}
	return names
}

func (r *Result) addError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

func (c *ConfigResult) merge(r *Result) {
	if r.Valid {
		return
	}
	c.Valid = false
	c.Errors = append(c.Errors, r.Errors...)
	if r.Blocked {
		c.Blocked = true
		if c.BlockReason == "" {
			c.BlockReason = r.BlockReason
		}
	}
}
