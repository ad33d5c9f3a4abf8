package abuse

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventContentViolation  EventType = "content_violation"
	EventRateLimitHit      EventType = "rate_limit_hit"
	EventPromptInjection   EventType = "prompt_injection"
	EventBanBypassAttempt  EventType = "ban_bypass_attempt"
	EventSuspiciousPattern EventType = "suspicious_pattern"
	EventManualFlag        EventType = "manual_flag"
)

type EventSeverity string

const (
	EventSeverityLow      EventSeverity = "low"
	EventSeverityMedium   EventSeverity = "medium"
	EventSeverityHigh     EventSeverity = "high"
	EventSeverityCritical EventSeverity = "critical"
)

// LogEntry is an append-only abuse event row. Entries are write-once.
type LogEntry struct {
	ID        uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	IPHash    string        `json:"ip_hash" gorm:"column:ip_hash;size:64;index"`
	EventType EventType     `json:"event_type" gorm:"column:event_type;index"`
	Severity  EventSeverity `json:"severity" gorm:"column:severity"`
	Endpoint  string        `json:"endpoint" gorm:"column:endpoint"`
	Details   JSONMap       `json:"details" gorm:"column:details;type:jsonb"`
	CreatedAt time.Time     `json:"created_at" gorm:"column:created_at;index"`
}

func (LogEntry) TableName() string {
	return "abuse_logs"
}
