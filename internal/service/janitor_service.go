package service

import (
	"context"
	"log"
	"time"

	"github.com/hirewire/hirewire/internal/repository"
	"github.com/robfig/cron/v3"
)

// JanitorService runs the periodic cleanup passes: expired blacklisted
// tokens and notifications past the retention window. Both passes are
// idempotent, so a failed run simply retries at the next tick.
type JanitorService struct {
	notifications repository.NotificationRepository
	blacklist     repository.BlacklistRepository
	retention     time.Duration
	schedule      string
	cron          *cron.Cron
}

func NewJanitorService(
	notifications repository.NotificationRepository,
	blacklist repository.BlacklistRepository,
	retention time.Duration,
	schedule string,
) *JanitorService {
	return &JanitorService{
		notifications: notifications,
		blacklist:     blacklist,
		retention:     retention,
		schedule:      schedule,
		cron:          cron.New(),
	}
}

// Start registers the sweep on the configured cron expression and starts the
// scheduler.
func (s *JanitorService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("janitor: scheduled with cron %q, retention %s", s.schedule, s.retention)
	return nil
}

func (s *JanitorService) Stop() {
	s.cron.Stop()
}

// Sweep runs both cleanup passes. A failure in one pass is logged and does
// not abort the other.
func (s *JanitorService) Sweep(ctx context.Context) {
	now := time.Now()

	if removed, err := s.blacklist.DeleteExpired(ctx, now); err != nil {
		log.Printf("janitor: blacklist sweep failed: %v", err)
	} else if removed > 0 {
		log.Printf("janitor: removed %d expired blacklisted tokens", removed)
	}

	cutoff := now.Add(-s.retention)
	if removed, err := s.notifications.DeleteCreatedBefore(ctx, cutoff); err != nil {
		log.Printf("janitor: notification sweep failed: %v", err)
	} else if removed > 0 {
		log.Printf("janitor: removed %d notifications older than %s", removed, s.retention)
	}
}
