package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Feedback struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Comment     string     `gorm:"type:text" json:"comment"`
	Score       int        `json:"score"`
	CandidateID uuid.UUID  `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Candidate   *Candidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type Note struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Note        string     `gorm:"type:text;not null" json:"note"`
	CandidateID uuid.UUID  `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Candidate   *Candidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
