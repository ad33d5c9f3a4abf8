package common

import "time"

const (
	TopicMaxLength   = 500
	TopicMinLength   = 10
	RuleMaxLength    = 200
	MessageMaxLength = 10000
	MaxCustomRules   = 5

	MaxActiveDebatesPerSession = 3

	RecentAbuseEventsCap = 100

	DefaultIPHashSalt = "debate-lab-default-salt"

	EmbeddingCacheTTL = 24 * time.Hour
)
