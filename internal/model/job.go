package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Stage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	JobStatusOpen   = "Open"
	JobStatusClosed = "Closed"
)

type Job struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string      `gorm:"size:255;not null" json:"title"`
	JobType        string      `gorm:"size:50" json:"job_type"`
	JobTime        string      `gorm:"size:50" json:"job_time"`
	Details        string      `gorm:"type:text" json:"details"`
	Location       string      `gorm:"size:255" json:"location"`
	IsRemote       bool        `gorm:"default:false" json:"is_remote"`
	SalaryCurrency string      `gorm:"size:10" json:"salary_currency"`
	SalaryLower    string      `gorm:"size:50" json:"salary_lower"`
	SalaryUpper    string      `gorm:"size:50" json:"salary_upper"`
	SalaryPublic   bool        `gorm:"default:false" json:"salary_public"`
	Status         string      `gorm:"size:20;default:Closed" json:"status"`
	OpenAt         *time.Time  `json:"open_at,omitempty"`
	ClosedAt       *time.Time  `json:"closed_at,omitempty"`
	DepartmentID   *uint       `json:"department_id,omitempty"`
	Department     *Department `gorm:"constraint:OnDelete:SET NULL" json:"department,omitempty"`
	UserID         *uuid.UUID  `gorm:"type:uuid" json:"user_id,omitempty"`
	User           *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// JobUser links a hiring manager to a job.
type JobUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
