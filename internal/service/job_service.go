package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/dto"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/microcosm-cc/bluemonday"
)

type JobService interface {
	CreateJob(ctx context.Context, input dto.CreateJobInput, actorID uuid.UUID) (*model.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error)
	ListJobs(ctx context.Context, limit, offset int) ([]model.Job, error)
	ListPublished(ctx context.Context, limit, offset int) ([]model.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, input dto.UpdateJobInput) (*model.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

type jobService struct {
	repo          repository.JobRepository
	users         repository.UserRepository
	notifications NotificationService
	search        SearchService
	sanitizer     *bluemonday.Policy
}

func NewJobService(
	repo repository.JobRepository,
	users repository.UserRepository,
	notifications NotificationService,
	search SearchService,
) JobService {
	return &jobService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		search:        search,
		sanitizer:     bluemonday.UGCPolicy(),
	}
}

func (s *jobService) CreateJob(ctx context.Context, input dto.CreateJobInput, actorID uuid.UUID) (*model.Job, error) {
	now := time.Now()
	job := &model.Job{
		Title:          input.Title,
		JobType:        input.JobType,
		JobTime:        input.JobTime,
		Details:        s.sanitizer.Sanitize(input.Details),
		Location:       input.Location,
		IsRemote:       input.IsRemote,
		SalaryCurrency: input.SalaryCurrency,
		SalaryLower:    input.SalaryLower,
		SalaryUpper:    input.SalaryUpper,
		SalaryPublic:   input.SalaryPublic,
		Status:         model.JobStatusOpen,
		OpenAt:         &now,
		DepartmentID:   input.DepartmentID,
		UserID:         &actorID,
	}

	if err := s.repo.Create(ctx, job, input.HiringManagers); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexJob(job); err != nil {
			log.Printf("job: index %s failed: %v", job.ID, err)
		}
	}

	// Every administrator and recruiter hears about a new position, except
	// whoever opened it.
	users, err := s.users.FindByRoles(ctx, []uint{model.RoleAdministrator, model.RoleRecruiter})
	if err != nil {
		log.Printf("job: resolve notification receivers failed: %v", err)
		return job, nil
	}

	for _, user := range users {
		if user.ID == actorID {
			continue
		}
		s.notify(ctx, &model.Notification{
			UserID:   actorID,
			Receiver: user.ID,
			JobID:    &job.ID,
			Message:  fmt.Sprintf("A new job has been created: %s", job.Title),
			Type:     model.NotificationJob,
		})
	}

	return job, nil
}

// notify creates a notification and logs on failure: a notification insert
// must never fail the parent action.
func (s *jobService) notify(ctx context.Context, n *model.Notification) {
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Printf("job: notify %s failed: %v", n.Receiver, err)
	}
}

func (s *jobService) GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *jobService) ListJobs(ctx context.Context, limit, offset int) ([]model.Job, error) {
	return s.repo.FindAll(ctx, limit, offset)
}

func (s *jobService) ListPublished(ctx context.Context, limit, offset int) ([]model.Job, error) {
	return s.repo.FindPublished(ctx, limit, offset)
}

func (s *jobService) UpdateJob(ctx context.Context, id uuid.UUID, input dto.UpdateJobInput) (*model.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		job.Title = *input.Title
	}
	if input.JobType != nil {
		job.JobType = *input.JobType
	}
	if input.JobTime != nil {
		job.JobTime = *input.JobTime
	}
	if input.Details != nil {
		job.Details = s.sanitizer.Sanitize(*input.Details)
	}
	if input.Location != nil {
		job.Location = *input.Location
	}
	if input.IsRemote != nil {
		job.IsRemote = *input.IsRemote
	}
	if input.SalaryCurrency != nil {
		job.SalaryCurrency = *input.SalaryCurrency
	}
	if input.SalaryLower != nil {
		job.SalaryLower = *input.SalaryLower
	}
	if input.SalaryUpper != nil {
		job.SalaryUpper = *input.SalaryUpper
	}
	if input.SalaryPublic != nil {
		job.SalaryPublic = *input.SalaryPublic
	}
	if input.Status != nil && *input.Status != job.Status {
		job.Status = *input.Status
		now := time.Now()
		if job.Status == model.JobStatusClosed {
			job.ClosedAt = &now
		} else {
			job.OpenAt = &now
			job.ClosedAt = nil
		}
	}

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	if s.search != nil {
		if err := s.search.IndexJob(job); err != nil {
			log.Printf("job: reindex %s failed: %v", job.ID, err)
		}
	}

	return job, nil
}

func (s *jobService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteJob(id.String()); err != nil {
			log.Printf("job: remove %s from index failed: %v", id, err)
		}
	}

	return nil
}
