package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/dto"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/hirewire/hirewire/pkg/apperror"
	"github.com/hirewire/hirewire/pkg/storage"
	"gorm.io/gorm"
)

type CandidateService interface {
	CreateCandidate(ctx context.Context, input dto.CreateCandidateInput, actorID uuid.UUID) (*model.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	ListCandidates(ctx context.Context, limit, offset int) ([]model.Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, input dto.UpdateCandidateInput, actorID uuid.UUID) (*model.Candidate, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) error

	// Apply is the public, unauthenticated application flow.
	Apply(ctx context.Context, input dto.ApplyInput) (*model.Candidate, error)
	ChangeStage(ctx context.Context, id uuid.UUID, stageID uint, actorID uuid.UUID) (*model.Candidate, error)

	AttachDocument(ctx context.Context, candidateID uuid.UUID, docType, name string, file io.Reader) (*model.Document, error)
	RemoveDocument(ctx context.Context, candidateID, documentID uuid.UUID) error
}

type candidateService struct {
	repo          repository.CandidateRepository
	jobs          repository.JobRepository
	users         repository.UserRepository
	notifications NotificationService
	search        SearchService
	documents     storage.DocumentStorage
}

func NewCandidateService(
	repo repository.CandidateRepository,
	jobs repository.JobRepository,
	users repository.UserRepository,
	notifications NotificationService,
	search SearchService,
	documents storage.DocumentStorage,
) CandidateService {
	return &candidateService{
		repo:          repo,
		jobs:          jobs,
		users:         users,
		notifications: notifications,
		search:        search,
		documents:     documents,
	}
}

func (s *candidateService) CreateCandidate(ctx context.Context, input dto.CreateCandidateInput, actorID uuid.UUID) (*model.Candidate, error) {
	if existing, err := s.repo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: a candidate with this email already exists", apperror.ErrBadRequest)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	candidate := &model.Candidate{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Email:           input.Email,
		Phone:           input.Phone,
		LinkedinProfile: input.LinkedinProfile,
		Source:          input.Source,
		Referral:        input.Referral,
		Tags:            input.Tags,
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	if input.JobID != nil {
		if err := s.repo.LinkJob(ctx, candidate.ID, *input.JobID); err != nil {
			log.Printf("candidate: link job %s failed: %v", *input.JobID, err)
		}
	}

	// The recruiter defaults to whoever created the candidate.
	recruiterID := actorID
	if input.RecruiterID != nil {
		recruiterID = *input.RecruiterID
	}
	if err := s.repo.ReplaceRecruiter(ctx, candidate.ID, recruiterID); err != nil {
		log.Printf("candidate: assign recruiter %s failed: %v", recruiterID, err)
	} else if recruiterID != actorID {
		s.notify(ctx, &model.Notification{
			UserID:      actorID,
			Receiver:    recruiterID,
			CandidateID: &candidate.ID,
			Message:     "You have been assigned a candidate",
			Type:        model.NotificationCandidate,
		})
	}

	s.notifyInterviewers(ctx, candidate.ID, input.Interviewers, actorID)

	if input.JobID != nil {
		s.notifyManagers(ctx, candidate.ID, *input.JobID, actorID, map[uuid.UUID]bool{recruiterID: true})
	}

	if s.search != nil {
		if err := s.search.IndexCandidate(candidate); err != nil {
			log.Printf("candidate: index %s failed: %v", candidate.ID, err)
		}
	}

	return candidate, nil
}

func (s *candidateService) notifyInterviewers(ctx context.Context, candidateID uuid.UUID, interviewers []uuid.UUID, actorID uuid.UUID) {
	seen := map[uuid.UUID]bool{actorID: true}
	for _, interviewer := range interviewers {
		if seen[interviewer] {
			continue
		}
		seen[interviewer] = true
		s.notify(ctx, &model.Notification{
			UserID:      actorID,
			Receiver:    interviewer,
			CandidateID: &candidateID,
			Message:     "You have been assigned to a candidate",
			Type:        model.NotificationCandidate,
		})
	}
}

func (s *candidateService) notifyManagers(ctx context.Context, candidateID, jobID, actorID uuid.UUID, already map[uuid.UUID]bool) {
	managers, err := s.jobs.FindManagers(ctx, jobID)
	if err != nil {
		log.Printf("candidate: resolve managers for %s failed: %v", jobID, err)
		return
	}
	for _, manager := range managers {
		if manager.UserID == actorID || already[manager.UserID] {
			continue
		}
		already[manager.UserID] = true
		s.notify(ctx, &model.Notification{
			UserID:      actorID,
			Receiver:    manager.UserID,
			CandidateID: &candidateID,
			JobID:       &jobID,
			Message:     "There is a candidate for your position",
			Type:        model.NotificationCandidate,
		})
	}
}

// notify logs and moves on: candidate writes never roll back because a
// notification insert failed.
func (s *candidateService) notify(ctx context.Context, n *model.Notification) {
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Printf("candidate: notify %s failed: %v", n.Receiver, err)
	}
}

func (s *candidateService) GetCandidate(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *candidateService) ListCandidates(ctx context.Context, limit, offset int) ([]model.Candidate, error) {
	return s.repo.FindAll(ctx, limit, offset)
}

func (s *candidateService) UpdateCandidate(ctx context.Context, id uuid.UUID, input dto.UpdateCandidateInput, actorID uuid.UUID) (*model.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		candidate.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		candidate.LastName = *input.LastName
	}
	if input.Phone != nil {
		candidate.Phone = *input.Phone
	}
	if input.LinkedinProfile != nil {
		candidate.LinkedinProfile = *input.LinkedinProfile
	}
	if input.Tags != nil {
		candidate.Tags = *input.Tags
	}

	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, err
	}

	if input.RecruiterID != nil {
		current, err := s.repo.FindRecruiter(ctx, id)
		changed := errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && current.UserID != *input.RecruiterID)
		if changed {
			if err := s.repo.ReplaceRecruiter(ctx, id, *input.RecruiterID); err != nil {
				log.Printf("candidate: reassign recruiter failed: %v", err)
			} else if *input.RecruiterID != actorID {
				s.notify(ctx, &model.Notification{
					UserID:      actorID,
					Receiver:    *input.RecruiterID,
					CandidateID: &id,
					Message:     "You have been assigned a candidate",
					Type:        model.NotificationCandidate,
				})
			}
		}
	}

	s.notifyInterviewers(ctx, id, input.Interviewers, actorID)

	if s.search != nil {
		if err := s.search.IndexCandidate(candidate); err != nil {
			log.Printf("candidate: reindex %s failed: %v", candidate.ID, err)
		}
	}

	return candidate, nil
}

func (s *candidateService) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	for _, doc := range candidate.Documents {
		if s.documents == nil || doc.PublicID == "" {
			continue
		}
		if err := s.documents.DeleteDocument(ctx, doc.PublicID); err != nil {
			log.Printf("candidate: remove stored document %s failed: %v", doc.ID, err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteCandidate(id.String()); err != nil {
			log.Printf("candidate: remove %s from index failed: %v", id, err)
		}
	}

	return nil
}

func (s *candidateService) Apply(ctx context.Context, input dto.ApplyInput) (*model.Candidate, error) {
	job, err := s.jobs.FindByID(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if job.Status != model.JobStatusOpen {
		return nil, fmt.Errorf("%w: this position is no longer accepting applications", apperror.ErrBadRequest)
	}

	if existing, err := s.repo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: an application with this email already exists", apperror.ErrBadRequest)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	candidate := &model.Candidate{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Email:           input.Email,
		Phone:           input.Phone,
		LinkedinProfile: input.LinkedinProfile,
		Source:          "application",
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, err
	}

	if err := s.repo.LinkJob(ctx, candidate.ID, job.ID); err != nil {
		log.Printf("candidate: link application to job %s failed: %v", job.ID, err)
	}

	// Every recruiter hears about a public application, not just the job's
	// hiring team. No authenticated actor here, so the notification carries
	// no author and the receivers always get the push and the email.
	recruiters, err := s.users.FindByRoles(ctx, []uint{model.RoleRecruiter})
	if err != nil {
		log.Printf("candidate: resolve recruiters failed: %v", err)
	}
	for _, recruiter := range recruiters {
		s.notify(ctx, &model.Notification{
			Receiver:    recruiter.ID,
			CandidateID: &candidate.ID,
			JobID:       &job.ID,
			Message:     fmt.Sprintf("A new candidate has applied to the %s position", job.Title),
			Type:        model.NotificationApplication,
		})
	}

	if s.search != nil {
		if err := s.search.IndexCandidate(candidate); err != nil {
			log.Printf("candidate: index %s failed: %v", candidate.ID, err)
		}
	}

	return candidate, nil
}

func (s *candidateService) ChangeStage(ctx context.Context, id uuid.UUID, stageID uint, actorID uuid.UUID) (*model.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate.StageID = &stageID
	candidate.Stage = nil
	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, err
	}

	recruiter, err := s.repo.FindRecruiter(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("candidate: resolve recruiter for %s failed: %v", id, err)
		}
		return candidate, nil
	}
	if recruiter.UserID != actorID {
		s.notify(ctx, &model.Notification{
			UserID:      actorID,
			Receiver:    recruiter.UserID,
			CandidateID: &id,
			Message:     "A candidate has moved to a new stage",
			Type:        model.NotificationCandidate,
		})
	}

	return candidate, nil
}

func (s *candidateService) AttachDocument(ctx context.Context, candidateID uuid.UUID, docType, name string, file io.Reader) (*model.Document, error) {
	if _, err := s.repo.FindByID(ctx, candidateID); err != nil {
		return nil, err
	}
	if s.documents == nil {
		return nil, fmt.Errorf("%w: document storage is not configured", apperror.ErrInternal)
	}

	url, publicID, err := s.documents.UploadDocument(ctx, file, "documents", name)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		CandidateID: candidateID,
		Type:        docType,
		Name:        name,
		Path:        url,
		PublicID:    publicID,
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *candidateService) RemoveDocument(ctx context.Context, candidateID, documentID uuid.UUID) error {
	doc, err := s.repo.FindDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.CandidateID != candidateID {
		return apperror.ErrNotFound
	}

	if s.documents != nil && doc.PublicID != "" {
		if err := s.documents.DeleteDocument(ctx, doc.PublicID); err != nil {
			log.Printf("candidate: remove stored document %s failed: %v", doc.ID, err)
		}
	}

	return s.repo.DeleteDocument(ctx, documentID)
}
