package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types determine the email template used for the side-channel
// delivery. A type outside this set is rejected at validation.
const (
	NotificationCandidate   = "candidate"
	NotificationFeedback    = "feedback"
	NotificationNote        = "note"
	NotificationJob         = "job"
	NotificationApplication = "application"
)

type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Message     string     `gorm:"type:text" json:"message"`
	Type        string     `gorm:"size:50;not null" json:"type"`
	Read        bool       `gorm:"default:false" json:"read"`
	Receiver    uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver"`
	UserID      uuid.UUID  `gorm:"type:uuid" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CandidateID *uuid.UUID `gorm:"type:uuid" json:"candidate_id,omitempty"`
	Candidate   *Candidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	JobID       *uuid.UUID `gorm:"type:uuid" json:"job_id,omitempty"`
	Job         *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func ValidNotificationType(t string) bool {
	switch t {
	case NotificationCandidate, NotificationFeedback, NotificationNote,
		NotificationJob, NotificationApplication:
		return true
	}
	return false
}
