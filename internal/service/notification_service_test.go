package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/hirewire/hirewire/pkg/apperror"
	"github.com/hirewire/hirewire/pkg/eventbus"
	"gorm.io/gorm"
)

func newNotificationService(t *testing.T, opts ...func(*notificationService)) (NotificationService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := &notificationService{
		repo:    repository.NewNotificationRepository(db),
		users:   repository.NewUserRepository(db),
		baseURL: "https://app.example.com",
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, db
}

func TestCreateRejectsMissingReceiver(t *testing.T) {
	svc, _ := newNotificationService(t)

	err := svc.Create(context.Background(), &model.Notification{
		Message: "hello",
		Type:    model.NotificationCandidate,
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _ := newNotificationService(t)

	err := svc.Create(context.Background(), &model.Notification{
		Receiver: uuid.New(),
		Type:     "party",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSurfacesPersistenceFailure(t *testing.T) {
	svc, db := newNotificationService(t)

	if err := db.Migrator().DropTable(&model.Notification{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	err := svc.Create(context.Background(), &model.Notification{
		Receiver: uuid.New(),
		Type:     model.NotificationCandidate,
	})
	if !errors.Is(err, apperror.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestCreatePublishesToReceiverTopic(t *testing.T) {
	bus := eventbus.New()
	svc, _ := newNotificationService(t, func(s *notificationService) { s.bus = bus })

	receiver := uuid.New()
	got := make(chan interface{}, 1)
	bus.Subscribe(DBChangeTopic(receiver), func(payload interface{}) {
		got <- payload
	})

	n := &model.Notification{
		Receiver: receiver,
		UserID:   uuid.New(),
		Message:  "A candidate has a note",
		Type:     model.NotificationNote,
	}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case payload := <-got:
		published, ok := payload.(*model.Notification)
		if !ok || published.ID != n.ID {
			t.Fatalf("published payload = %#v", payload)
		}
	default:
		t.Fatal("no publish observed on receiver topic")
	}
}

func TestCreateSelfActionSkipsSideEffects(t *testing.T) {
	bus := eventbus.New()
	dispatcher := newFakeDispatcher()
	svc, db := newNotificationService(t, func(s *notificationService) {
		s.bus = bus
		s.dispatcher = dispatcher
	})

	actor := seedUser(t, db, "self@example.com", model.RoleRecruiter)

	published := make(chan interface{}, 1)
	bus.Subscribe(DBChangeTopic(actor.ID), func(payload interface{}) {
		published <- payload
	})

	err := svc.Create(context.Background(), &model.Notification{
		Receiver: actor.ID,
		UserID:   actor.ID,
		Message:  "A candidate has moved to a new stage",
		Type:     model.NotificationCandidate,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The row is still persisted and listable.
	rows, err := svc.List(context.Background(), actor.ID, 10, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(rows))
	}

	select {
	case <-published:
		t.Fatal("self-action published a realtime event")
	default:
	}
	dispatcher.expectNone(t)
}

func TestCreateDispatchesEmailToReceiver(t *testing.T) {
	dispatcher := newFakeDispatcher()
	svc, db := newNotificationService(t, func(s *notificationService) {
		s.dispatcher = dispatcher
	})

	receiver := seedUser(t, db, "recruiter@example.com", model.RoleRecruiter)
	candidateID := uuid.New()

	err := svc.Create(context.Background(), &model.Notification{
		Receiver:    receiver.ID,
		UserID:      uuid.New(),
		CandidateID: &candidateID,
		Message:     "A candidate has been given feedback",
		Type:        model.NotificationFeedback,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	call := dispatcher.wait(t)
	if call.To != "recruiter@example.com" {
		t.Fatalf("email went to %s", call.To)
	}
	if call.Locale != "en" {
		t.Fatalf("locale = %s", call.Locale)
	}
	want := "https://app.example.com/candidates/" + candidateID.String()
	if call.Data.URL != want {
		t.Fatalf("deep link = %s, want %s", call.Data.URL, want)
	}
}

func TestCreateDeepLinksJobNotifications(t *testing.T) {
	dispatcher := newFakeDispatcher()
	svc, db := newNotificationService(t, func(s *notificationService) {
		s.dispatcher = dispatcher
	})

	receiver := seedUser(t, db, "admin@example.com", model.RoleAdministrator)
	jobID := uuid.New()

	err := svc.Create(context.Background(), &model.Notification{
		Receiver: receiver.ID,
		UserID:   uuid.New(),
		JobID:    &jobID,
		Message:  "A new job has been created: Staff Engineer",
		Type:     model.NotificationJob,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	call := dispatcher.wait(t)
	want := "https://app.example.com/jobs/" + jobID.String()
	if call.Data.URL != want {
		t.Fatalf("deep link = %s, want %s", call.Data.URL, want)
	}
}

func TestListIsolatesReceivers(t *testing.T) {
	svc, _ := newNotificationService(t)

	alice := uuid.New()
	bob := uuid.New()
	for i := 0; i < 3; i++ {
		if err := svc.Create(context.Background(), &model.Notification{
			Receiver: alice,
			UserID:   uuid.New(),
			Type:     model.NotificationCandidate,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := svc.Create(context.Background(), &model.Notification{
		Receiver: bob,
		UserID:   uuid.New(),
		Type:     model.NotificationCandidate,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	aliceRows, err := svc.List(context.Background(), alice, 10, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	bobRows, err := svc.List(context.Background(), bob, 10, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(aliceRows) != 3 || len(bobRows) != 1 {
		t.Fatalf("list sizes = %d, %d", len(aliceRows), len(bobRows))
	}
	for _, row := range aliceRows {
		if row.Receiver != alice {
			t.Fatalf("alice's list contains receiver %s", row.Receiver)
		}
	}
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	svc, _ := newNotificationService(t)

	receiver := uuid.New()
	n := &model.Notification{
		Receiver: receiver,
		UserID:   uuid.New(),
		Type:     model.NotificationNote,
	}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		row, err := svc.MarkAsRead(context.Background(), n.ID, receiver)
		if err != nil {
			t.Fatalf("MarkAsRead pass %d: %v", i+1, err)
		}
		if !row.Read {
			t.Fatalf("pass %d: notification still unread", i+1)
		}
	}

	count, err := svc.UnreadCount(context.Background(), receiver)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("unread count = %d", count)
	}
}

func TestDestroyAllForReceiver(t *testing.T) {
	svc, _ := newNotificationService(t)

	receiver := uuid.New()
	other := uuid.New()
	for _, r := range []uuid.UUID{receiver, receiver, other} {
		if err := svc.Create(context.Background(), &model.Notification{
			Receiver: r,
			UserID:   uuid.New(),
			Type:     model.NotificationCandidate,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := svc.DestroyAllForReceiver(context.Background(), receiver); err != nil {
		t.Fatalf("DestroyAllForReceiver: %v", err)
	}

	mine, err := svc.List(context.Background(), receiver, 10, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	theirs, err := svc.List(context.Background(), other, 10, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 0 || len(theirs) != 1 {
		t.Fatalf("after destroy: mine=%d theirs=%d", len(mine), len(theirs))
	}
}

func TestMarkAsReadScopedToReceiver(t *testing.T) {
	svc, _ := newNotificationService(t)

	receiver := uuid.New()
	n := &model.Notification{
		Receiver: receiver,
		UserID:   uuid.New(),
		Type:     model.NotificationCandidate,
	}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.MarkAsRead(context.Background(), n.ID, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for foreign receiver, got %v", err)
	}

	count, err := svc.UnreadCount(context.Background(), receiver)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("notification was marked read by a foreign receiver")
	}
}

func TestDestroyScopedToReceiver(t *testing.T) {
	svc, _ := newNotificationService(t)

	receiver := uuid.New()
	n := &model.Notification{
		Receiver: receiver,
		UserID:   uuid.New(),
		Type:     model.NotificationCandidate,
	}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Destroy(context.Background(), n.ID, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for foreign receiver, got %v", err)
	}

	rows, err := svc.List(context.Background(), receiver, 10, 0, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("notification was deleted by a foreign receiver")
	}

	if err := svc.Destroy(context.Background(), n.ID, receiver); err != nil {
		t.Fatalf("Destroy by owner: %v", err)
	}
}

func TestListOrderOnlySelectsDirection(t *testing.T) {
	svc, db := newNotificationService(t)

	receiver := uuid.New()
	older := &model.Notification{
		Receiver: receiver,
		UserID:   uuid.New(),
		Type:     model.NotificationNote,
		Message:  "older",
	}
	newer := &model.Notification{
		Receiver: receiver,
		UserID:   uuid.New(),
		Type:     model.NotificationNote,
		Message:  "newer",
	}
	for _, n := range []*model.Notification{older, newer} {
		if err := svc.Create(context.Background(), n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	// Everything except "asc" lists newest first, including anything that
	// tries to smuggle SQL through the order value.
	hostile := "(CASE WHEN (SELECT count(*) FROM users) > 0 THEN message END) DESC"
	for _, order := range []string{"", "desc", hostile} {
		rows, err := svc.List(context.Background(), receiver, 10, 0, order)
		if err != nil {
			t.Fatalf("List(%q): %v", order, err)
		}
		if len(rows) != 2 || rows[0].Message != "newer" {
			t.Fatalf("List(%q): unexpected ordering %+v", order, rows)
		}
	}

	rows, err := svc.List(context.Background(), receiver, 10, 0, "asc")
	if err != nil {
		t.Fatalf("List(asc): %v", err)
	}
	if len(rows) != 2 || rows[0].Message != "older" {
		t.Fatalf("List(asc): unexpected ordering %+v", rows)
	}
}
