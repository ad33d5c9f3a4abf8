package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"gorm.io/gorm"
)

// LogRepository is append-only: rows are never updated or deleted here.
type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) abuse.LogRepository {
	return &LogRepository{
		db: db,
	}
}

func (r *LogRepository) Append(ctx context.Context, entry *abuse.LogEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append abuse log: %w", err)
	}
	return nil
}

func (r *LogRepository) CountEventsSince(ctx context.Context, ipHash string, eventType abuse.EventType, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&abuse.LogEntry{}).
		Where("ip_hash = ? AND event_type = ? AND created_at >= ?", ipHash, eventType, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count abuse events: %w", err)
	}
	return count, nil
}

func (r *LogRepository) RecentByHash(ctx context.Context, ipHash string, limit int) ([]abuse.LogEntry, error) {
	var entries []abuse.LogEntry
	err := r.db.WithContext(ctx).
		Where("ip_hash = ?", ipHash).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent abuse events: %w", err)
	}
	return entries, nil
}
