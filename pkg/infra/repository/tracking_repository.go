package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) abuse.TrackingRepository {
	return &TrackingRepository{
		db: db,
	}
}

func (r *TrackingRepository) GetByHash(ctx context.Context, ipHash string) (*abuse.TrackingRecord, error) {
	entity := new(abuse.TrackingRecord)
	err := r.db.WithContext(ctx).
		Where("ip_hash = ?", ipHash).
		First(entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load tracking record: %w", err)
	}
	return entity, nil
}

// Upsert inserts or overwrites the row keyed by ip_hash. Concurrent writers
// both land; last write wins, which is acceptable for visit accounting.
func (r *TrackingRepository) Upsert(ctx context.Context, record *abuse.TrackingRecord) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ip_hash"}},
			UpdateAll: true,
		}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert tracking record: %w", err)
	}
	return nil
}
