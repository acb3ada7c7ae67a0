package repository

import (
	"context"
	"time"

	"github.com/hirewire/hirewire/internal/model"
	"gorm.io/gorm"
)

type BlacklistRepository interface {
	Add(ctx context.Context, entry *model.BlacklistedToken) error
	Contains(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type blacklistRepository struct {
	db *gorm.DB
}

func NewBlacklistRepository(db *gorm.DB) BlacklistRepository {
	return &blacklistRepository{db: db}
}

func (r *blacklistRepository) Add(ctx context.Context, entry *model.BlacklistedToken) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *blacklistRepository) Contains(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BlacklistedToken{}).
		Where("token = ?", token).
		Count(&count).Error
	return count > 0, err
}

func (r *blacklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.BlacklistedToken{}, "expires_at < ?", now)
	return res.RowsAffected, res.Error
}
