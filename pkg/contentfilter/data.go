package contentfilter

import "regexp"

type Category string

const (
	CategoryProfanity       Category = "profanity"
	CategoryPromptInjection Category = "prompt_injection"
	CategoryHarmfulContent  Category = "harmful_content"
	CategoryManipulation    Category = "manipulation"
	CategoryPII             Category = "pii"
	CategorySpam            Category = "spam"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type patternRule struct {
	category    Category
	severity    Severity
	description string
	pattern     *regexp.Regexp
}

// profanityRules carry graded severities so low-severity hits can be
// soft-redacted instead of blocking.
var profanityRules = []patternRule{
	{
		category:    CategoryProfanity,
		severity:    SeverityLow,
		description: "mild profanity",
		pattern:     regexp.MustCompile(`(?i)\b(damn|hell|crap|piss(?:ed)?)\b`),
	},
	{
		category:    CategoryProfanity,
		severity:    SeverityMedium,
		description: "strong profanity",
		pattern:     regexp.MustCompile(`(?i)\b(f+[u\*@]+c*k+\w*|s+h+[i1\*]+t+\w*|b[i1]tch\w*|a[s\$]{2}hole\w*)\b`),
	},
	{
		category:    CategoryProfanity,
		severity:    SeverityHigh,
		description: "slur or degrading language",
		pattern:     regexp.MustCompile(`(?i)\b(r[e3]t[a@]rd\w*|f[a@]gg?[o0]t\w*|tr[a@]nn[y1]\w*)\b`),
	},
}

var promptInjectionRules = []patternRule{
	{
		category:    CategoryPromptInjection,
		severity:    SeverityCritical,
		description: "instruction override attempt",
		pattern:     regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions?|prompts?|rules?|context)`),
	},
	{
		category:    CategoryPromptInjection,
		severity:    SeverityCritical,
		description: "role reassignment attempt",
		pattern:     regexp.MustCompile(`(?i)(you\s+are\s+now|pretend\s+(?:to\s+be|you\s+are)|act\s+as\s+(?:if|a|an)\b|roleplay\s+as)`),
	},
	{
		category:    CategoryPromptInjection,
		severity:    SeverityHigh,
		description: "system prompt probe",
		pattern:     regexp.MustCompile(`(?i)(reveal|show|print|repeat)\s+(?:your\s+)?(?:system\s+)?(?:prompt|instructions?)`),
	},
	{
		category:    CategoryPromptInjection,
		severity:    SeverityHigh,
		description: "template or delimiter injection",
		pattern:     regexp.MustCompile(`(\{\{[^}]*\}\}|\[\s*/?INST\s*\]|<\s*\|?\s*im_(?:start|end)\s*\|?\s*>)`),
	},
	{
		category:    CategoryPromptInjection,
		severity:    SeverityHigh,
		description: "jailbreak keyword",
		pattern:     regexp.MustCompile(`(?i)\b(jailbreak|dan\s+mode|developer\s+mode|do\s+anything\s+now)\b`),
	},
}

var harmfulContentRules = []patternRule{
	{
		category:    CategoryHarmfulContent,
		severity:    SeverityCritical,
		description: "violence facilitation",
		pattern:     regexp.MustCompile(`(?i)(how\s+to\s+(?:kill|murder|poison|maim)|instructions?\s+for\s+(?:making|building)\s+(?:a\s+)?(?:bomb|weapon|explosive))`),
	},
	{
		category:    CategoryHarmfulContent,
		severity:    SeverityCritical,
		description: "self-harm facilitation",
		pattern:     regexp.MustCompile(`(?i)(how\s+to\s+(?:commit\s+suicide|hurt\s+(?:myself|yourself))|best\s+way\s+to\s+(?:end\s+(?:my|your)\s+life|self[\s-]?harm))`),
	},
	{
		category:    CategoryHarmfulContent,
		severity:    SeverityHigh,
		description: "illegal activity facilitation",
		pattern:     regexp.MustCompile(`(?i)(how\s+to\s+(?:launder\s+money|cook\s+meth|make\s+(?:drugs|counterfeit))|buy\s+(?:illegal\s+)?(?:drugs|firearms)\s+online)`),
	},
	{
		category:    CategoryManipulation,
		severity:    SeverityMedium,
		description: "coercive framing",
		pattern:     regexp.MustCompile(`(?i)(you\s+must\s+(?:agree|admit|accept)\s+that|only\s+an?\s+idiot\s+would|anyone\s+who\s+disagrees\s+is)`),
	},
	{
		category:    CategoryPII,
		severity:    SeverityMedium,
		description: "social security number",
		pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	},
	{
		category:    CategoryPII,
		severity:    SeverityLow,
		description: "email address",
		pattern:     regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.]+\b`),
	},
	{
		category:    CategorySpam,
		severity:    SeverityLow,
		description: "promotional link spam",
		pattern:     regexp.MustCompile(`(?i)(buy\s+now|limited\s+time\s+offer|click\s+here)\s*[:!]?\s*https?://`),
	},
}
