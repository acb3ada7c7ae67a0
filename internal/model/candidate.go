package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Candidate struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName       string     `gorm:"size:100;not null" json:"first_name"`
	LastName        string     `gorm:"size:100" json:"last_name"`
	Email           string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone           string     `gorm:"size:50" json:"phone"`
	LinkedinProfile string     `gorm:"size:255" json:"linkedin_profile"`
	Source          string     `gorm:"size:100" json:"source"`
	Referral        string     `gorm:"size:100" json:"referral"`
	Tags            string     `gorm:"type:text" json:"tags"`
	StageID         *uint      `json:"stage_id,omitempty"`
	Stage           *Stage     `gorm:"constraint:OnDelete:SET NULL" json:"stage,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Documents       []Document `gorm:"constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CandidateUser links the recruiter owning a candidate.
type CandidateUser struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CandidateJob links a candidate to the position they are in process for.
type CandidateJob struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	JobID       uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Type        string    `gorm:"size:50" json:"type"`
	Name        string    `gorm:"size:255" json:"name"`
	Path        string    `gorm:"type:text;not null" json:"path"`
	PublicID    string    `gorm:"size:255" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
