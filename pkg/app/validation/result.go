package validation

// Result is the single verdict type returned to callers. Input errors land
// in Errors; security denials set Blocked with a fixed, non-specific reason.
type Result struct {
	Valid            bool     `json:"valid"`
	SanitizedValue   string   `json:"sanitized_value,omitempty"`
	SanitizedValues  []string `json:"sanitized_values,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	Blocked          bool     `json:"blocked"`
	BlockReason      string   `json:"block_reason,omitempty"`
	ModerationSource string   `json:"moderation_source,omitempty"`
}

// DebateConfig is the caller-supplied debate setup before validation.
type DebateConfig struct {
	Topic     string   `json:"topic"`
	Rules     []string `json:"rules,omitempty"`
	TurnCount int      `json:"turn_count"`
	Format    string   `json:"format"`
}

// ConfigResult aggregates every error across the config before answering.
// SanitizedConfig is set only when the whole config passed.
type ConfigResult struct {
	Valid           bool          `json:"valid"`
	Errors          []string      `json:"errors,omitempty"`
	Blocked         bool          `json:"blocked"`
	BlockReason     string        `json:"block_reason,omitempty"`
	SanitizedConfig *DebateConfig `json:"sanitized_config,omitempty"`
}

var allowedTurnCounts = map[int]bool{6: true, 8: true, 10: true, 12: true}

var allowedFormats = map[string]bool{
	"standard":        true,
	"oxford":          true,
	"lincoln_douglas": true,
	"rapid_fire":      true,
}
