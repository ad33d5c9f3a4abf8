package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Context selects the normalization profile.
type Context string

const (
	// ContextStorage strips markup and control characters for durable storage.
	ContextStorage Context = "storage"
	// ContextLLM applies storage normalization plus the injection-surface strip.
	ContextLLM Context = "llm"
	// ContextDisplay escapes for HTML rendering, or keeps an inline-tag
	// allow list when AllowHTML is set.
	ContextDisplay Context = "display"
)

// Options enumerates every recognized knob. Unknown behavior is not
// configurable; call sites pick a context and a length budget.
type Options struct {
	Context       Context
	MaxLength     int
	AllowHTML     bool
	StripNewlines bool
}

// Result reports what sanitization did. Value is always usable; Sanitize
// never fails.
type Result struct {
	Value           string
	WasModified     bool
	OriginalLength  int
	SanitizedLength int
}

const defaultMaxLength = 10000

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	scriptPattern     = regexp.MustCompile(`(?is)<\s*(script|style)[^>]*>.*?<\s*/\s*(script|style)\s*>`)
	controlPattern    = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	whitespacePattern = regexp.MustCompile(`[ \t]{2,}`)

	// Inline tags kept when AllowHTML is set; everything else is stripped,
	// attributes included.
	allowedInlineTags = map[string]bool{
		"b": true, "i": true, "em": true, "strong": true, "u": true,
	}
	allowedTagPattern = regexp.MustCompile(`(?i)<\s*(/?)\s*([a-z0-9]+)[^>]*>`)
)

// Sanitize normalizes input for the given context. Truncation to MaxLength
// is always the final step; dangerous-pattern detection must run on the raw
// input before this function is called, because normalization can destroy
// the evidence it needs.
func Sanitize(input string, opts Options) Result {
	original := input
	if opts.MaxLength <= 0 {
		opts.MaxLength = defaultMaxLength
	}
	if opts.Context == "" {
		opts.Context = ContextStorage
	}

	var value string
	switch opts.Context {
	case ContextDisplay:
		value = sanitizeDisplay(input, opts.AllowHTML)
	case ContextLLM:
		value = stripInjectionSurface(sanitizeStorage(input))
	default:
		value = sanitizeStorage(input)
	}

	if opts.StripNewlines {
		value = strings.ReplaceAll(value, "\r", " ")
		value = strings.ReplaceAll(value, "\n", " ")
	}
	value = whitespacePattern.ReplaceAllString(value, " ")
	value = strings.TrimSpace(value)

	if len(value) > opts.MaxLength {
		value = truncate(value, opts.MaxLength)
		if opts.Context == ContextDisplay && !opts.AllowHTML {
			value = trimPartialEntity(value)
		}
		value = strings.TrimSpace(value)
	}

	return Result{
		Value:           value,
		WasModified:     value != original,
		OriginalLength:  len(original),
		SanitizedLength: len(value),
	}
}

// ContainsDangerousPatterns probes raw, unsanitized input against the
// injection surface. Callers run this before Sanitize; sanitizing first
// could mask the very pattern that should block the request outright.
func ContainsDangerousPatterns(input string) bool {
	for _, name := range probeOrder {
		if dangerousPatterns[name].MatchString(input) {
			return true
		}
	}
	return false
}

// DetectDangerousPatterns returns every matching pattern family, in a
// stable order, for audit logging.
func DetectDangerousPatterns(input string) []PatternType {
	var found []PatternType
	for _, name := range probeOrder {
		if dangerousPatterns[name].MatchString(input) {
			found = append(found, name)
		}
	}
	return found
}

func sanitizeStorage(input string) string {
	value := decodeEntities(input)
	value = scriptPattern.ReplaceAllString(value, "")
	value = tagPattern.ReplaceAllString(value, "")
	// Stray brackets left by decoded entities would re-form tags on a
	// second pass; drop them so sanitization stays idempotent.
	value = strings.ReplaceAll(value, "<", "")
	value = strings.ReplaceAll(value, ">", "")
	value = controlPattern.ReplaceAllString(value, "")
	return value
}

// stripInjectionSurface removes the injection surface, looping to a fixed
// point because removing one match can splice the surrounding text into
// another.
func stripInjectionSurface(input string) string {
	value := input
	for i := 0; i < 8; i++ {
		before := value
		for _, name := range probeOrder {
			value = dangerousPatterns[name].ReplaceAllString(value, "")
		}
		if value == before {
			break
		}
	}
	return value
}

func sanitizeDisplay(input string, allowHTML bool) string {
	if !allowHTML {
		// Unescape first so already-escaped input does not get escaped twice.
		return html.EscapeString(html.UnescapeString(input))
	}

	value := scriptPattern.ReplaceAllString(input, "")
	value = allowedTagPattern.ReplaceAllStringFunc(value, func(tag string) string {
		parts := allowedTagPattern.FindStringSubmatch(tag)
		if parts == nil {
			return ""
		}
		name := strings.ToLower(parts[2])
		if !allowedInlineTags[name] {
			return ""
		}
		if parts[1] != "" {
			return "</" + name + ">"
		}
		return "<" + name + ">"
	})
	return controlPattern.ReplaceAllString(value, "")
}

// truncate cuts at maxLen bytes, backing off so a multi-byte rune is never
// split.
func truncate(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

// trimPartialEntity drops an HTML entity the byte cut left incomplete. In
// escaped display output every ampersand starts an entity, so a trailing
// "&..." with no closing semicolon is always a split one; keeping it would
// let a second pass re-escape the bare ampersand and grow the value.
func trimPartialEntity(value string) string {
	idx := strings.LastIndexByte(value, '&')
	if idx == -1 || strings.ContainsRune(value[idx:], ';') {
		return value
	}
	return value[:idx]
}

// decodeEntities resolves common HTML entities, looping so nested
// encodings ("&amp;lt;") cannot survive a single pass and defeat the
// bracket strip above.
func decodeEntities(input string) string {
	value := input
	for i := 0; i < 4; i++ {
		decoded := html.UnescapeString(value)
		if decoded == value {
			break
		}
		value = decoded
	}
	return value
}
