package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/dto"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"gorm.io/gorm"
)

func newJobService(t *testing.T) (JobService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	notifications := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		nil, nil, "https://app.example.com",
	)
	svc := NewJobService(
		repository.NewJobRepository(db),
		repository.NewUserRepository(db),
		notifications,
		nil,
	)
	return svc, db
}

func TestCreateJobNotifiesStaffExceptActor(t *testing.T) {
	svc, db := newJobService(t)

	admin := seedUser(t, db, "admin@example.com", model.RoleAdministrator)
	recruiter := seedUser(t, db, "recruiter@example.com", model.RoleRecruiter)
	interviewer := seedUser(t, db, "interviewer@example.com", model.RoleInterviewer)

	job, err := svc.CreateJob(context.Background(), dto.CreateJobInput{
		Title: "Platform Engineer",
	}, admin.ID)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	// The recruiter hears about it; the actor and the interviewer do not.
	if got := countNotifications(t, db, recruiter.ID); got != 1 {
		t.Fatalf("recruiter notifications = %d", got)
	}
	if got := countNotifications(t, db, admin.ID); got != 0 {
		t.Fatalf("actor notified itself %d times", got)
	}
	if got := countNotifications(t, db, interviewer.ID); got != 0 {
		t.Fatalf("interviewer notifications = %d", got)
	}

	var row model.Notification
	if err := db.Where("receiver = ?", recruiter.ID).First(&row).Error; err != nil {
		t.Fatalf("load notification: %v", err)
	}
	if row.Type != model.NotificationJob {
		t.Fatalf("type = %s", row.Type)
	}
	if row.Message != "A new job has been created: Platform Engineer" {
		t.Fatalf("message = %q", row.Message)
	}
	if row.JobID == nil || *row.JobID != job.ID {
		t.Fatalf("job link = %v", row.JobID)
	}
}

func TestCreateJobSanitizesDetails(t *testing.T) {
	svc, db := newJobService(t)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdministrator)

	job, err := svc.CreateJob(context.Background(), dto.CreateJobInput{
		Title:   "Backend Engineer",
		Details: `<p>Build services</p><script>alert("x")</script>`,
	}, admin.ID)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if strings.Contains(job.Details, "<script>") {
		t.Fatalf("details kept script tag: %q", job.Details)
	}
	if !strings.Contains(job.Details, "Build services") {
		t.Fatalf("details lost content: %q", job.Details)
	}
}

func TestCreateJobLinksHiringManagers(t *testing.T) {
	svc, db := newJobService(t)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdministrator)
	manager := seedUser(t, db, "manager@example.com", model.RoleRecruiter)

	job, err := svc.CreateJob(context.Background(), dto.CreateJobInput{
		Title:          "Data Engineer",
		HiringManagers: []uuid.UUID{manager.ID},
	}, admin.ID)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	managers, err := repository.NewJobRepository(db).FindManagers(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("FindManagers: %v", err)
	}
	if len(managers) != 1 || managers[0].UserID != manager.ID {
		t.Fatalf("managers = %+v", managers)
	}
}

func TestUpdateJobStatusStampsClosedAt(t *testing.T) {
	svc, db := newJobService(t)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdministrator)

	job, err := svc.CreateJob(context.Background(), dto.CreateJobInput{Title: "SRE"}, admin.ID)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.OpenAt == nil {
		t.Fatal("OpenAt not set on create")
	}

	closed := model.JobStatusClosed
	updated, err := svc.UpdateJob(context.Background(), job.ID, dto.UpdateJobInput{Status: &closed})
	if err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if updated.Status != model.JobStatusClosed || updated.ClosedAt == nil {
		t.Fatalf("status=%s closedAt=%v", updated.Status, updated.ClosedAt)
	}
}
