package abuse

import (
	"time"

	"github.com/google/uuid"
)

type BanType string

const (
	BanTypeTemporary BanType = "temporary"
	BanTypePermanent BanType = "permanent"
)

// BanReason is the closed set of reasons a ban can carry. Each reason maps
// to a default duration; zero means permanent.
type BanReason string

const (
	BanReasonRateLimitAbuse   BanReason = "rate_limit_abuse"
	BanReasonContentViolation BanReason = "content_violation"
	BanReasonPromptInjection  BanReason = "prompt_injection"
	BanReasonSpamBot          BanReason = "spam_bot"
	BanReasonHarassment       BanReason = "harassment"
	BanReasonIllegalContent   BanReason = "illegal_content"
	BanReasonManual           BanReason = "manual"
)

// DefaultDuration returns the reason-specific ban duration. A zero duration
// means the ban is permanent.
func (r BanReason) DefaultDuration() time.Duration {
	switch r {
	case BanReasonRateLimitAbuse:
		return time.Hour
	case BanReasonContentViolation, BanReasonPromptInjection:
		return 24 * time.Hour
	case BanReasonSpamBot:
		return 7 * 24 * time.Hour
	case BanReasonHarassment:
		return 30 * 24 * time.Hour
	case BanReasonIllegalContent:
		return 0
	default:
		return 24 * time.Hour
	}
}

// Ban is a durable ban row. At most one active ban may exist per identity
// hash; expired bans are deactivated, never deleted.
type Ban struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	IPHash      string     `json:"ip_hash" gorm:"column:ip_hash;size:64;index"`
	BanType     BanType    `json:"ban_type" gorm:"column:ban_type"`
	Reason      BanReason  `json:"reason" gorm:"column:reason"`
	Description string     `json:"description" gorm:"column:description"`
	ExpiresAt   *time.Time `json:"expires_at" gorm:"column:expires_at"`
	CreatedBy   string     `json:"created_by" gorm:"column:created_by"`
	IsActive    bool       `json:"is_active" gorm:"column:is_active;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (Ban) TableName() string {
	return "ip_bans"
}

// IsExpired reports whether a temporary ban has passed its expiry.
// Permanent bans never expire.
func (b *Ban) IsExpired(now time.Time) bool {
	if b.BanType == BanTypePermanent || b.ExpiresAt == nil {
		return false
	}
	return now.After(*b.ExpiresAt)
}
