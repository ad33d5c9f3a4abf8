package request

// ValidateTopicRequest is the body for POST /api/v1/validate/topic.
type ValidateTopicRequest struct {
	Topic string `json:"topic"`
}

// ValidateRulesRequest is the body for POST /api/v1/validate/rules.
type ValidateRulesRequest struct {
	Rules []string `json:"rules"`
}

// ValidateConfigRequest is the body for POST /api/v1/validate/config.
type ValidateConfigRequest struct {
	Topic     string   `json:"topic"`
	Rules     []string `json:"rules,omitempty"`
	TurnCount int      `json:"turn_count"`
	Format    string   `json:"format"`
}
