package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/model"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job, managerIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.Job, error)
	FindPublished(ctx context.Context, limit, offset int) ([]model.Job, error)
	FindManagers(ctx context.Context, jobID uuid.UUID) ([]model.JobUser, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job, managerIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(job).Error; err != nil {
			return err
		}

		for _, userID := range managerIDs {
			link := model.JobUser{JobID: job.ID, UserID: userID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "first_name", "last_name", "email")
		}).
		Where("id = ?", id).
		First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindAll(ctx context.Context, limit, offset int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepository) FindPublished(ctx context.Context, limit, offset int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Where("status = ?", model.JobStatusOpen).
		Order("open_at desc").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepository) FindManagers(ctx context.Context, jobID uuid.UUID) ([]model.JobUser, error) {
	var managers []model.JobUser
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Find(&managers).Error
	return managers, err
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.JobUser{}, "job_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Job{}, "id = ?", id).Error
	})
}
