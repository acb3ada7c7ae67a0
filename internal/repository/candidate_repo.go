package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/model"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	FindByEmail(ctx context.Context, email string) (*model.Candidate, error)
	FindAll(ctx context.Context, limit, offset int) ([]model.Candidate, error)
	Update(ctx context.Context, candidate *model.Candidate) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Recruiter ownership (CandidateUser) and position links (CandidateJob).
	FindRecruiter(ctx context.Context, candidateID uuid.UUID) (*model.CandidateUser, error)
	ReplaceRecruiter(ctx context.Context, candidateID, userID uuid.UUID) error
	LinkJob(ctx context.Context, candidateID, jobID uuid.UUID) error
	FindJobLink(ctx context.Context, candidateID uuid.UUID) (*model.CandidateJob, error)

	AddDocument(ctx context.Context, doc *model.Document) error
	FindDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.WithContext(ctx).
		Preload("Stage").
		Preload("Documents").
		Where("id = ?", id).
		First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindByEmail(ctx context.Context, email string) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindAll(ctx context.Context, limit, offset int) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.WithContext(ctx).
		Preload("Stage").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&candidates).Error
	return candidates, err
}

func (r *candidateRepository) Update(ctx context.Context, candidate *model.Candidate) error {
	return r.db.WithContext(ctx).Save(candidate).Error
}

func (r *candidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.CandidateUser{}, "candidate_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.CandidateJob{}, "candidate_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Candidate{}, "id = ?", id).Error
	})
}

func (r *candidateRepository) FindRecruiter(ctx context.Context, candidateID uuid.UUID) (*model.CandidateUser, error) {
	var link model.CandidateUser
	if err := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *candidateRepository) ReplaceRecruiter(ctx context.Context, candidateID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.CandidateUser{}, "candidate_id = ?", candidateID).Error; err != nil {
			return err
		}
		link := model.CandidateUser{CandidateID: candidateID, UserID: userID}
		return tx.Create(&link).Error
	})
}

func (r *candidateRepository) LinkJob(ctx context.Context, candidateID, jobID uuid.UUID) error {
	link := model.CandidateJob{CandidateID: candidateID, JobID: jobID}
	return r.db.WithContext(ctx).Create(&link).Error
}

func (r *candidateRepository) FindJobLink(ctx context.Context, candidateID uuid.UUID) (*model.CandidateJob, error) {
	var link model.CandidateJob
	if err := r.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *candidateRepository) AddDocument(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *candidateRepository) FindDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *candidateRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, "id = ?", id).Error
}
