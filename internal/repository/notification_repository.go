package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/model"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByReceiver(ctx context.Context, receiver uuid.UUID, limit, offset int, order string) ([]model.Notification, error)
	FindForReceiver(ctx context.Context, id, receiver uuid.UUID) (*model.Notification, error)
	MarkAsRead(ctx context.Context, id, receiver uuid.UUID) error
	MarkAllAsRead(ctx context.Context, receiver uuid.UUID) error
	CountUnread(ctx context.Context, receiver uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, receiver uuid.UUID) error
	DeleteAllForReceiver(ctx context.Context, receiver uuid.UUID) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) FindByReceiver(ctx context.Context, receiver uuid.UUID, limit, offset int, order string) ([]model.Notification, error) {
	// The order value comes straight off the query string; only the sort
	// direction is caller controlled, never the SQL.
	sort := "created_at desc"
	if order == "asc" {
		sort = "created_at asc"
	}

	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("receiver = ?", receiver).
		Order(sort).
		Limit(limit).
		Offset(offset).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "first_name", "last_name")
		}).
		Preload("Candidate", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "first_name", "last_name")
		}).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) FindForReceiver(ctx context.Context, id, receiver uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND receiver = ?", id, receiver).First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, receiver uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND receiver = ?", id, receiver).
		Update("read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, receiver uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("receiver = ? AND read = ?", receiver, false).
		Update("read", true).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, receiver uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("receiver = ? AND read = ?", receiver, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) Delete(ctx context.Context, id, receiver uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Notification{}, "id = ? AND receiver = ?", id, receiver).Error
}

func (r *notificationRepository) DeleteAllForReceiver(ctx context.Context, receiver uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Notification{}, "receiver = ?", receiver).Error
}

// DeleteCreatedBefore removes notifications older than cutoff regardless of
// read status. Used by the janitor retention sweep.
func (r *notificationRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Notification{}, "created_at <= ?", cutoff)
	return res.RowsAffected, res.Error
}
