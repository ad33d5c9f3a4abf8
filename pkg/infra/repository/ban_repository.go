package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"gorm.io/gorm"
)

type BanRepository struct {
	db *gorm.DB
}

func NewBanRepository(db *gorm.DB) abuse.BanRepository {
	return &BanRepository{
		db: db,
	}
}

func (r *BanRepository) Create(ctx context.Context, ban *abuse.Ban) error {
	if err := r.db.WithContext(ctx).Create(ban).Error; err != nil {
		return fmt.Errorf("failed to create ban: %w", err)
	}
	return nil
}

// FindActiveByHash returns the newest active ban for the hash, or nil when
// none exists. Expiry is the caller's concern.
func (r *BanRepository) FindActiveByHash(ctx context.Context, ipHash string) (*abuse.Ban, error) {
	entity := new(abuse.Ban)
	err := r.db.WithContext(ctx).
		Where("ip_hash = ? AND is_active = ?", ipHash, true).
		Order("created_at DESC").
		First(entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active ban: %w", err)
	}
	return entity, nil
}

func (r *BanRepository) Deactivate(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&abuse.Ban{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate ban: %w", err)
	}
	return nil
}
