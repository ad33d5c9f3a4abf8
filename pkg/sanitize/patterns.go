package sanitize

import "regexp"

// PatternType identifies one family of prompt-injection surface syntax.
type PatternType string

const (
	TemplateInjection   PatternType = "template"
	RoleMarker          PatternType = "role_marker"
	InstructionOverride PatternType = "instruction_override"
	JailbreakKeyword    PatternType = "jailbreak"
	CodeInjection       PatternType = "code"
	SpacedObfuscation   PatternType = "spaced_obfuscation"
	EncodedKeyword      PatternType = "encoded_keyword"
	SuspiciousUnicode   PatternType = "suspicious_unicode"
)

// dangerousPatterns is the curated injection surface. The same table backs
// both the pre-sanitization probe and the llm-context strip, so a pattern
// that is detected is always also removed.
var dangerousPatterns = map[PatternType]*regexp.Regexp{
	TemplateInjection: regexp.MustCompile(`(?i)(` +
		`\{\{[^}]*\}\}|` +
		`\$\{[^}]*\}|` +
		`<%[^%]*%>|` +
		`\[\[[^\]]*\]\]|` +
		`#\{[^}]*\}|` +
		`__proto__|constructor\s*\[|prototype\s*\[` +
		`)`),

	RoleMarker: regexp.MustCompile(`(?i)(` +
		`\[\s*/?\s*(?:INST|SYS|SYSTEM)\s*\]|` +
		`<\s*\|?\s*(?:im_start|im_end|endoftext|system|assistant)\s*\|?\s*>|` +
		`(?:^|\n)\s*(?:system|assistant|user)\s*:\s*|` +
		`###\s*(?:system|instruction|assistant)` +
		`)`),

	InstructionOverride: regexp.MustCompile(`(?i)(` +
		`ignore\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions?|prompts?|rules?|context)|` +
		`disregard\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions?|prompts?|rules?)|` +
		`forget\s+(?:everything|all|your)\s+(?:you|previous|instructions?|training)|` +
		`(?:new|override)\s+(?:system\s+)?instructions?\s*:|` +
		`you\s+are\s+no\s+longer\s+(?:a|an|bound)|` +
		`act\s+as\s+(?:if\s+you\s+(?:are|were)|a\s+different)` +
		`)`),

	JailbreakKeyword: regexp.MustCompile(`(?i)(` +
		`\bjailbreak\b|` +
		`\bdan\s+mode\b|` +
		`\bdeveloper\s+mode\b|` +
		`do\s+anything\s+now|` +
		`without\s+(?:any\s+)?(?:restrictions?|filters?|limitations?)|` +
		`bypass\s+(?:your\s+)?(?:safety|content|moderation)\s+(?:guidelines?|filters?|policies)` +
		`)`),

	CodeInjection: regexp.MustCompile(`(?i)(` +
		`<\s*script[^>]*>|` +
		`javascript\s*:|` +
		`\beval\s*\(|` +
		`\bexec\s*\(|` +
		`\bsystem\s*\(|` +
		`process\.env|` +
		`require\s*\(\s*['"]child_process['"]\s*\)|` +
		`import\s+os\s*;?\s*os\.system` +
		`)`),

	SpacedObfuscation: regexp.MustCompile(`(?i)(` +
		`i[\s._\-]+g[\s._\-]+n[\s._\-]+o[\s._\-]+r[\s._\-]+e|` +
		`j[\s._\-]+a[\s._\-]+i[\s._\-]+l[\s._\-]+b[\s._\-]+r[\s._\-]+e[\s._\-]+a[\s._\-]+k|` +
		`s[\s._\-]+y[\s._\-]+s[\s._\-]+t[\s._\-]+e[\s._\-]+m` +
		`)`),

	// hex, base64 and ROT13 encodings of "ignore", "instructions" and
	// "jailbreak".
	EncodedKeyword: regexp.MustCompile(`(?i)(` +
		`69676e6f7265|` +
		`696e737472756374696f6e73|` +
		`6a61696c627265616b|` +
		`aWdub3Jl|` +
		`aW5zdHJ1Y3Rpb25z|` +
		`amFpbGJyZWFr|` +
		`\bvtaber\b|` +
		`\bvafgehpgvbaf\b|` +
		`\bwnvyoernx\b` +
		`)`),

	// Zero-width characters, bidi controls, Unicode tag block. Used for
	// homoglyph and invisible-text evasion.
	SuspiciousUnicode: regexp.MustCompile(
		"[\u200B-\u200F\u202A-\u202E\u2066-\u2069\uFEFF\U000E0000-\U000E007F]"),
}

// probeOrder makes DetectDangerousPatterns deterministic.
var probeOrder = []PatternType{
	TemplateInjection,
	RoleMarker,
	InstructionOverride,
	JailbreakKeyword,
	CodeInjection,
	SpacedObfuscation,
	EncodedKeyword,
	SuspiciousUnicode,
}
