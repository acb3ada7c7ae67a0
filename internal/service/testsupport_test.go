package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/mailer"
	"github.com/hirewire/hirewire/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Profile{},
		&model.BlacklistedToken{},
		&model.Department{},
		&model.Stage{},
		&model.Job{},
		&model.JobUser{},
		&model.Candidate{},
		&model.CandidateUser{},
		&model.CandidateJob{},
		&model.Document{},
		&model.Feedback{},
		&model.Note{},
		&model.Notification{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, roleID uint) *model.User {
	t.Helper()

	user := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "x",
		RoleID:       &roleID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}

	profile := &model.Profile{UserID: user.ID, Locale: "en"}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed profile for %s: %v", email, err)
	}
	return user
}

type dispatchCall struct {
	To           string
	Subject      string
	TemplateType string
	Locale       string
	Data         mailer.Context
}

// fakeDispatcher records dispatches on a channel so tests can wait for the
// asynchronous email side effect.
type fakeDispatcher struct {
	calls chan dispatchCall
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{calls: make(chan dispatchCall, 16)}
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, to, subject, templateType, locale string, data mailer.Context) error {
	f.calls <- dispatchCall{To: to, Subject: subject, TemplateType: templateType, Locale: locale, Data: data}
	return nil
}

func (f *fakeDispatcher) wait(t *testing.T) dispatchCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email dispatch")
		return dispatchCall{}
	}
}

func (f *fakeDispatcher) expectNone(t *testing.T) {
	t.Helper()
	select {
	case call := <-f.calls:
		t.Fatalf("unexpected email dispatch to %s", call.To)
	case <-time.After(100 * time.Millisecond):
	}
}

func countNotifications(t *testing.T, db *gorm.DB, receiver uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.Notification{}).Where("receiver = ?", receiver).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}
