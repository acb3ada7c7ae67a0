package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
)

func TestSweepDeletesOnlyExpiredNotifications(t *testing.T) {
	db := newTestDB(t)
	notifications := repository.NewNotificationRepository(db)
	blacklist := repository.NewBlacklistRepository(db)

	receiver := uuid.New()
	old := &model.Notification{Receiver: receiver, Type: model.NotificationCandidate, Message: "old"}
	fresh := &model.Notification{Receiver: receiver, Type: model.NotificationCandidate, Message: "fresh"}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("seed old: %v", err)
	}
	if err := db.Create(fresh).Error; err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	// Backdate past the four-day retention window.
	fiveDaysAgo := time.Now().Add(-5 * 24 * time.Hour)
	if err := db.Model(old).Update("created_at", fiveDaysAgo).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	oneDayAgo := time.Now().Add(-24 * time.Hour)
	if err := db.Model(fresh).Update("created_at", oneDayAgo).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	janitor := NewJanitorService(notifications, blacklist, 96*time.Hour, "0 0 * * *")
	janitor.Sweep(context.Background())

	rows, err := notifications.FindByReceiver(context.Background(), receiver, 10, 0, "")
	if err != nil {
		t.Fatalf("FindByReceiver: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 surviving notification, got %d", len(rows))
	}
	if rows[0].Message != "fresh" {
		t.Fatalf("wrong survivor: %s", rows[0].Message)
	}
}

func TestSweepReapsExpiredBlacklistEntries(t *testing.T) {
	db := newTestDB(t)
	notifications := repository.NewNotificationRepository(db)
	blacklist := repository.NewBlacklistRepository(db)

	expired := &model.BlacklistedToken{Token: "expired-token", ExpiresAt: time.Now().Add(-time.Hour)}
	live := &model.BlacklistedToken{Token: "live-token", ExpiresAt: time.Now().Add(time.Hour)}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}
	if err := db.Create(live).Error; err != nil {
		t.Fatalf("seed live: %v", err)
	}

	janitor := NewJanitorService(notifications, blacklist, 96*time.Hour, "0 0 * * *")
	janitor.Sweep(context.Background())

	gone, err := blacklist.Contains(context.Background(), "expired-token")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if gone {
		t.Fatal("expired token still blacklisted")
	}

	kept, err := blacklist.Contains(context.Background(), "live-token")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !kept {
		t.Fatal("live token was reaped early")
	}
}

func TestJanitorRejectsBadSchedule(t *testing.T) {
	db := newTestDB(t)
	janitor := NewJanitorService(
		repository.NewNotificationRepository(db),
		repository.NewBlacklistRepository(db),
		96*time.Hour,
		"not a cron expression",
	)
	if err := janitor.Start(); err == nil {
		janitor.Stop()
		t.Fatal("expected error for invalid schedule")
	}
}
