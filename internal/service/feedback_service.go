package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/dto"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/hirewire/hirewire/pkg/apperror"
	"gorm.io/gorm"
)

type FeedbackService interface {
	CreateFeedback(ctx context.Context, input dto.CreateFeedbackInput, actorID uuid.UUID) (*model.Feedback, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Feedback, error)
	UpdateFeedback(ctx context.Context, id uuid.UUID, input dto.UpdateFeedbackInput, actorID uuid.UUID) (*model.Feedback, error)
	DeleteFeedback(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
}

type feedbackService struct {
	repo          repository.FeedbackRepository
	candidates    repository.CandidateRepository
	jobs          repository.JobRepository
	notifications NotificationService
}

func NewFeedbackService(
	repo repository.FeedbackRepository,
	candidates repository.CandidateRepository,
	jobs repository.JobRepository,
	notifications NotificationService,
) FeedbackService {
	return &feedbackService{
		repo:          repo,
		candidates:    candidates,
		jobs:          jobs,
		notifications: notifications,
	}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, input dto.CreateFeedbackInput, actorID uuid.UUID) (*model.Feedback, error) {
	feedback := &model.Feedback{
		Comment:     input.Comment,
		Score:       input.Score,
		CandidateID: input.CandidateID,
		UserID:      actorID,
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, err
	}

	s.fanOut(ctx, input.CandidateID, actorID)

	return feedback, nil
}

// fanOut tells the candidate's recruiter and the hiring managers of the
// candidate's job that feedback arrived. The actor never notifies
// themselves, and a failed insert only gets logged.
func (s *feedbackService) fanOut(ctx context.Context, candidateID, actorID uuid.UUID) {
	notified := map[uuid.UUID]bool{actorID: true}

	recruiter, err := s.candidates.FindRecruiter(ctx, candidateID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// unassigned candidate, nobody owns them yet
	case err != nil:
		log.Printf("feedback: resolve recruiter for %s failed: %v", candidateID, err)
	case !notified[recruiter.UserID]:
		notified[recruiter.UserID] = true
		s.notify(ctx, recruiter.UserID, candidateID, actorID)
	}

	link, err := s.candidates.FindJobLink(ctx, candidateID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("feedback: resolve job for %s failed: %v", candidateID, err)
		}
		return
	}

	managers, err := s.jobs.FindManagers(ctx, link.JobID)
	if err != nil {
		log.Printf("feedback: resolve managers for %s failed: %v", link.JobID, err)
		return
	}
	for _, manager := range managers {
		if notified[manager.UserID] {
			continue
		}
		notified[manager.UserID] = true
		s.notify(ctx, manager.UserID, candidateID, actorID)
	}
}

func (s *feedbackService) notify(ctx context.Context, receiver, candidateID, actorID uuid.UUID) {
	err := s.notifications.Create(ctx, &model.Notification{
		UserID:      actorID,
		Receiver:    receiver,
		CandidateID: &candidateID,
		Message:     "A candidate has been given feedback",
		Type:        model.NotificationFeedback,
	})
	if err != nil {
		log.Printf("feedback: notify %s failed: %v", receiver, err)
	}
}

func (s *feedbackService) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Feedback, error) {
	return s.repo.FindByCandidate(ctx, candidateID)
}

func (s *feedbackService) UpdateFeedback(ctx context.Context, id uuid.UUID, input dto.UpdateFeedbackInput, actorID uuid.UUID) (*model.Feedback, error) {
	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if feedback.UserID != actorID {
		return nil, apperror.ErrForbidden
	}

	if input.Comment != nil {
		feedback.Comment = *input.Comment
	}
	if input.Score != nil {
		feedback.Score = *input.Score
	}

	if err := s.repo.Update(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *feedbackService) DeleteFeedback(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if feedback.UserID != actorID {
		return apperror.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
