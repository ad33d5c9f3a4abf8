package abuse

import (
	"time"

	"github.com/lib/pq"
)

// TrackingRecord is the durable per-identity record. One row per identity
// hash; created on first sight and updated on every subsequent request.
// Rows are never hard-deleted.
type TrackingRecord struct {
	IPHash      string         `json:"ip_hash" gorm:"column:ip_hash;primaryKey;size:64"`
	FirstSeen   time.Time      `json:"first_seen" gorm:"column:first_seen"`
	LastSeen    time.Time      `json:"last_seen" gorm:"column:last_seen"`
	VisitCount  int            `json:"visit_count" gorm:"column:visit_count"`
	FlagCount   int            `json:"flag_count" gorm:"column:flag_count"`
	IsFlagged   bool           `json:"is_flagged" gorm:"column:is_flagged"`
	FlagReasons pq.StringArray `json:"flag_reasons" gorm:"column:flag_reasons;type:text[]"`
	Metadata    JSONMap        `json:"metadata" gorm:"column:metadata;type:jsonb"`
}

func (TrackingRecord) TableName() string {
	return "ip_tracking"
}

// HasReason reports whether reason is already in the de-duplicated list.
func (r *TrackingRecord) HasReason(reason string) bool {
	for _, existing := range r.FlagReasons {
		if existing == reason {
			return true
		}
	}
	return false
}

// MergeMetadata copies the given keys over the record's metadata,
// allocating the map on first use.
func (r *TrackingRecord) MergeMetadata(meta map[string]any) {
	if len(meta) == 0 {
		return
	}
	if r.Metadata == nil {
		r.Metadata = make(JSONMap, len(meta))
	}
	for k, v := range meta {
		r.Metadata[k] = v
	}
}
