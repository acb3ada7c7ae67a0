package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/mailer"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/hirewire/hirewire/pkg/apperror"
	"github.com/hirewire/hirewire/pkg/eventbus"
	"gorm.io/gorm"
)

// DBChangeTopic is the per-user channel realtime clients subscribe to.
func DBChangeTopic(userID uuid.UUID) string {
	return fmt.Sprintf("db/change/%s", userID)
}

type NotificationService interface {
	// Create persists the notification and, on success, fires the email and
	// realtime side effects. Only the persist step can fail the call.
	Create(ctx context.Context, notification *model.Notification) error
	List(ctx context.Context, receiver uuid.UUID, limit, offset int, order string) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, id, receiver uuid.UUID) (*model.Notification, error)
	MarkAllAsRead(ctx context.Context, receiver uuid.UUID) error
	UnreadCount(ctx context.Context, receiver uuid.UUID) (int64, error)
	Destroy(ctx context.Context, id, receiver uuid.UUID) error
	DestroyAllForReceiver(ctx context.Context, receiver uuid.UUID) error
}

type notificationService struct {
	repo       repository.NotificationRepository
	users      repository.UserRepository
	bus        eventbus.Publisher
	dispatcher mailer.Dispatcher
	baseURL    string
}

func NewNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	bus eventbus.Publisher,
	dispatcher mailer.Dispatcher,
	baseURL string,
) NotificationService {
	return &notificationService{
		repo:       repo,
		users:      users,
		bus:        bus,
		dispatcher: dispatcher,
		baseURL:    baseURL,
	}
}

func (s *notificationService) Create(ctx context.Context, notification *model.Notification) error {
	if notification.Receiver == uuid.Nil {
		return fmt.Errorf("%w: receiver is required", apperror.ErrValidation)
	}
	if !model.ValidNotificationType(notification.Type) {
		return fmt.Errorf("%w: unknown type %q", apperror.ErrValidation, notification.Type)
	}

	// The persist is the authoritative step; the realtime push and the email
	// are conveniences layered on top of the durable record.
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrPersistence, err)
	}

	// Self-actions produce a record the user can list, but no push and no
	// email about their own activity.
	if notification.UserID == notification.Receiver {
		return nil
	}

	if s.bus != nil {
		s.bus.Publish(DBChangeTopic(notification.Receiver), notification)
	}

	if s.dispatcher != nil {
		// Detached from the request context: the caller has already been
		// answered and must not be held up by the provider.
		go s.sendEmail(context.Background(), notification)
	}

	return nil
}

// sendEmail resolves the receiver's address and locale and hands the message
// to the dispatcher. Every failure path logs and returns; nothing here can
// affect the already-persisted notification.
func (s *notificationService) sendEmail(ctx context.Context, notification *model.Notification) {
	user, err := s.users.FindByID(ctx, notification.Receiver)
	if err != nil {
		log.Printf("notification email: receiver %s not found: %v", notification.Receiver, err)
		return
	}

	locale := "en"
	if user.Profile != nil && user.Profile.Locale != "" {
		locale = user.Profile.Locale
	}

	data := mailer.Context{
		URL:  s.deepLink(notification),
		Name: user.DisplayName(),
	}

	if err := s.dispatcher.Dispatch(ctx, user.Email, notification.Message, notification.Type, locale, data); err != nil {
		log.Printf("notification email: dispatch to %s failed: %v", user.Email, err)
	}
}

func (s *notificationService) deepLink(notification *model.Notification) string {
	if notification.Type == model.NotificationJob && notification.JobID != nil {
		return fmt.Sprintf("%s/jobs/%s", s.baseURL, notification.JobID)
	}
	if notification.CandidateID != nil {
		return fmt.Sprintf("%s/candidates/%s", s.baseURL, notification.CandidateID)
	}
	return s.baseURL
}

func (s *notificationService) List(ctx context.Context, receiver uuid.UUID, limit, offset int, order string) ([]model.Notification, error) {
	return s.repo.FindByReceiver(ctx, receiver, limit, offset, order)
}

// MarkAsRead flips the read flag on one of the receiver's own rows. A row
// belonging to someone else is indistinguishable from a missing one.
func (s *notificationService) MarkAsRead(ctx context.Context, id, receiver uuid.UUID) (*model.Notification, error) {
	if err := s.repo.MarkAsRead(ctx, id, receiver); err != nil {
		return nil, err
	}
	notification, err := s.repo.FindForReceiver(ctx, id, receiver)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: notification not found", apperror.ErrNotFound)
	}
	return notification, err
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, receiver uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, receiver)
}

func (s *notificationService) UnreadCount(ctx context.Context, receiver uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, receiver)
}

func (s *notificationService) Destroy(ctx context.Context, id, receiver uuid.UUID) error {
	if _, err := s.repo.FindForReceiver(ctx, id, receiver); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification not found", apperror.ErrNotFound)
		}
		return err
	}
	return s.repo.Delete(ctx, id, receiver)
}

func (s *notificationService) DestroyAllForReceiver(ctx context.Context, receiver uuid.UUID) error {
	return s.repo.DeleteAllForReceiver(ctx, receiver)
}
