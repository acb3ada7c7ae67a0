package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/dto"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/hirewire/hirewire/pkg/eventbus"
	"gorm.io/gorm"
)

type feedbackFixture struct {
	svc        FeedbackService
	db         *gorm.DB
	bus        *eventbus.Bus
	candidates repository.CandidateRepository
	jobs       repository.JobRepository
}

func newFeedbackFixture(t *testing.T) *feedbackFixture {
	t.Helper()

	db := newTestDB(t)
	bus := eventbus.New()
	candidates := repository.NewCandidateRepository(db)
	jobs := repository.NewJobRepository(db)

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		bus, nil, "https://app.example.com",
	)

	return &feedbackFixture{
		svc:        NewFeedbackService(repository.NewFeedbackRepository(db), candidates, jobs, notifications),
		db:         db,
		bus:        bus,
		candidates: candidates,
		jobs:       jobs,
	}
}

func (f *feedbackFixture) seedCandidate(t *testing.T, recruiterID uuid.UUID) *model.Candidate {
	t.Helper()
	candidate := &model.Candidate{FirstName: "Dana", Email: uuid.NewString() + "@example.com"}
	if err := f.candidates.Create(context.Background(), candidate); err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	if recruiterID != uuid.Nil {
		if err := f.candidates.ReplaceRecruiter(context.Background(), candidate.ID, recruiterID); err != nil {
			t.Fatalf("assign recruiter: %v", err)
		}
	}
	return candidate
}

func TestCreateFeedbackNotifiesRecruiterAndManagers(t *testing.T) {
	f := newFeedbackFixture(t)

	interviewer := seedUser(t, f.db, "interviewer@example.com", model.RoleInterviewer)
	recruiter := seedUser(t, f.db, "recruiter@example.com", model.RoleRecruiter)
	manager := seedUser(t, f.db, "manager@example.com", model.RoleRecruiter)

	candidate := f.seedCandidate(t, recruiter.ID)

	job := &model.Job{Title: "Staff Engineer", Status: model.JobStatusOpen}
	if err := f.jobs.Create(context.Background(), job, []uuid.UUID{manager.ID}); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	if err := f.candidates.LinkJob(context.Background(), candidate.ID, job.ID); err != nil {
		t.Fatalf("link job: %v", err)
	}

	pushed := make(chan interface{}, 1)
	f.bus.Subscribe(DBChangeTopic(recruiter.ID), func(payload interface{}) {
		pushed <- payload
	})

	_, err := f.svc.CreateFeedback(context.Background(), dto.CreateFeedbackInput{
		CandidateID: candidate.ID,
		Comment:     "Strong systems background",
		Score:       8,
	}, interviewer.ID)
	if err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	if got := countNotifications(t, f.db, recruiter.ID); got != 1 {
		t.Fatalf("recruiter notifications = %d", got)
	}
	if got := countNotifications(t, f.db, manager.ID); got != 1 {
		t.Fatalf("manager notifications = %d", got)
	}
	if got := countNotifications(t, f.db, interviewer.ID); got != 0 {
		t.Fatalf("actor notified itself %d times", got)
	}

	var row model.Notification
	if err := f.db.Where("receiver = ?", recruiter.ID).First(&row).Error; err != nil {
		t.Fatalf("load notification: %v", err)
	}
	if row.Type != model.NotificationFeedback {
		t.Fatalf("type = %s", row.Type)
	}
	if row.Message != "A candidate has been given feedback" {
		t.Fatalf("message = %q", row.Message)
	}
	if row.CandidateID == nil || *row.CandidateID != candidate.ID {
		t.Fatalf("candidate link = %v", row.CandidateID)
	}

	select {
	case <-pushed:
	default:
		t.Fatal("no realtime push for the recruiter")
	}
}

func TestCreateFeedbackByRecruiterSkipsSelf(t *testing.T) {
	f := newFeedbackFixture(t)

	recruiter := seedUser(t, f.db, "recruiter@example.com", model.RoleRecruiter)
	candidate := f.seedCandidate(t, recruiter.ID)

	_, err := f.svc.CreateFeedback(context.Background(), dto.CreateFeedbackInput{
		CandidateID: candidate.ID,
		Comment:     "Looks great",
		Score:       9,
	}, recruiter.ID)
	if err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	if got := countNotifications(t, f.db, recruiter.ID); got != 0 {
		t.Fatalf("recruiter got %d notifications about their own feedback", got)
	}
}

func TestCreateFeedbackOnUnassignedCandidate(t *testing.T) {
	f := newFeedbackFixture(t)

	interviewer := seedUser(t, f.db, "interviewer@example.com", model.RoleInterviewer)
	candidate := f.seedCandidate(t, uuid.Nil)

	feedback, err := f.svc.CreateFeedback(context.Background(), dto.CreateFeedbackInput{
		CandidateID: candidate.ID,
		Comment:     "No owner yet",
		Score:       5,
	}, interviewer.ID)
	if err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}
	if feedback.ID == uuid.Nil {
		t.Fatal("feedback was not persisted")
	}

	var count int64
	if err := f.db.Model(&model.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no notifications, got %d", count)
	}
}
