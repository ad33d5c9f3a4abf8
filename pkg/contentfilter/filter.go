package contentfilter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Match is a single regex hit. Immutable; consumed only within the current
// validation call.
type Match struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Matched     string   `json:"matched"`
	Offset      int      `json:"offset"`
}

// Config enumerates every recognized toggle. Zero value runs nothing; call
// sites opt in to the groups they need.
type Config struct {
	CheckProfanity       bool
	CheckPromptInjection bool
	CheckHarmfulContent  bool
	StrictMode           bool
	AllowPatterns        []string
	BlockPatterns        []string
}

// Result reports all matches across all enabled groups. Matching is
// exhaustive rather than first-hit because severity aggregation and audit
// logging need every hit.
type Result struct {
	Passed           bool    `json:"passed"`
	Matches          []Match `json:"matches"`
	SanitizedContent string  `json:"sanitized_content,omitempty"`
	ShouldBlock      bool    `json:"should_block"`
	ShouldLog        bool    `json:"should_log"`
}

type Filter struct {
	logger *logrus.Logger
}

func NewFilter(logger *logrus.Logger) *Filter {
	return &Filter{logger: logger}
}

// FilterContent runs every enabled pattern group over content and applies
// the blocking and logging policy.
func (f *Filter) FilterContent(content string, cfg Config) (*Result, error) {
	allowPatterns, err := compilePatterns(cfg.AllowPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid allow pattern: %w", err)
	}
	blockPatterns, err := compilePatterns(cfg.BlockPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid block pattern: %w", err)
	}

	// An explicit allow match short-circuits everything. Used for known-safe
	// humorous topics that would otherwise trip literal keyword rules.
	for _, allow := range allowPatterns {
		if allow.MatchString(content) {
			return &Result{Passed: true, SanitizedContent: content}, nil
		}
	}

	var matches []Match
	if cfg.CheckProfanity {
		matches = append(matches, findMatches(content, profanityRules)...)
	}
	if cfg.CheckPromptInjection {
		matches = append(matches, findMatches(content, promptInjectionRules)...)
	}
	if cfg.CheckHarmfulContent {
		matches = append(matches, findMatches(content, harmfulContentRules)...)
	}
	for _, block := range blockPatterns {
		for _, loc := range block.FindAllStringIndex(content, -1) {
			matches = append(matches, Match{
				Category:    CategorySpam,
				Severity:    SeverityHigh,
				Description: "caller-supplied block pattern",
				Matched:     content[loc[0]:loc[1]],
				Offset:      loc[0],
			})
		}
	}

	result := &Result{
		Matches:          matches,
		ShouldBlock:      shouldBlock(matches, cfg.StrictMode),
		ShouldLog:        shouldLog(matches),
		SanitizedContent: content,
	}
	result.Passed = !result.ShouldBlock

	if result.ShouldBlock {
		result.SanitizedContent = ""
		f.logger.WithFields(logrus.Fields{
			"matches":     len(matches),
			"strict_mode": cfg.StrictMode,
		}).Warn("content blocked by pattern filter")
		return result, nil
	}

	// Not blocking: soft-redact low-severity profanity in place so logs stay
	// readable without carrying the raw term.
	if len(matches) > 0 {
		result.SanitizedContent = redactProfanity(content, matches)
	}
	return result, nil
}

// IsPromptInjection probes content against the injection subset only.
func (f *Filter) IsPromptInjection(content string) bool {
	for _, rule := range promptInjectionRules {
		if rule.pattern.MatchString(content) {
			return true
		}
	}
	return false
}

func findMatches(content string, rules []patternRule) []Match {
	var matches []Match
	for _, rule := range rules {
		for _, loc := range rule.pattern.FindAllStringIndex(content, -1) {
			matches = append(matches, Match{
				Category:    rule.category,
				Severity:    rule.severity,
				Description: rule.description,
				Matched:     content[loc[0]:loc[1]],
				Offset:      loc[0],
			})
		}
	}
	return matches
}

// shouldBlock: critical always blocks, high blocks only in strict mode, and
// the prompt_injection and harmful_content categories block at any severity
// because their presence alone is disqualifying.
func shouldBlock(matches []Match, strictMode bool) bool {
	for _, m := range matches {
		if m.Severity == SeverityCritical {
			return true
		}
		if m.Severity == SeverityHigh && strictMode {
			return true
		}
		if m.Category == CategoryPromptInjection || m.Category == CategoryHarmfulContent {
			return true
		}
	}
	return false
}

// shouldLog flags anything critical/high or injection-shaped for audit,
// independent of whether it blocked.
func shouldLog(matches []Match) bool {
	for _, m := range matches {
		if m.Severity == SeverityCritical || m.Severity == SeverityHigh {
			return true
		}
		if m.Category == CategoryPromptInjection {
			return true
		}
	}
	return false
}

// redactProfanity masks low-severity profanity with asterisks of the same
// length, preserving offsets for everything around it.
func redactProfanity(content string, matches []Match) string {
	redacted := []byte(content)
	for _, m := range matches {
		if m.Category != CategoryProfanity || m.Severity != SeverityLow {
			continue
		}
		end := m.Offset + len(m.Matched)
		if m.Offset < 0 || end > len(redacted) {
			continue
		}
		copy(redacted[m.Offset:end], []byte(strings.Repeat("*", len(m.Matched))))
	}
	return string(redacted)
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
