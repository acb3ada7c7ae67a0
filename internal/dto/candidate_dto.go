package dto

import "github.com/google/uuid"

type CreateCandidateInput struct {
	FirstName       string      `json:"first_name" binding:"required,max=100"`
	LastName        string      `json:"last_name" binding:"max=100"`
	Email           string      `json:"email" binding:"required,email"`
	Phone           string      `json:"phone"`
	LinkedinProfile string      `json:"linkedin_profile"`
	Source          string      `json:"source"`
	Referral        string      `json:"referral"`
	Tags            string      `json:"tags"`
	JobID           *uuid.UUID  `json:"job_id"`
	RecruiterID     *uuid.UUID  `json:"recruiter_id"`
	Interviewers    []uuid.UUID `json:"interviewers"`
}

type UpdateCandidateInput struct {
	FirstName       *string     `json:"first_name"`
	LastName        *string     `json:"last_name"`
	Phone           *string     `json:"phone"`
	LinkedinProfile *string     `json:"linkedin_profile"`
	Tags            *string     `json:"tags"`
	RecruiterID     *uuid.UUID  `json:"recruiter_id"`
	Interviewers    []uuid.UUID `json:"interviewers"`
}

// ApplyInput is the public application form: no authentication, rate limited
// by email.
type ApplyInput struct {
	FirstName       string    `json:"first_name" binding:"required,max=100"`
	LastName        string    `json:"last_name" binding:"max=100"`
	Email           string    `json:"email" binding:"required,email"`
	Phone           string    `json:"phone"`
	LinkedinProfile string    `json:"linkedin_profile"`
	JobID           uuid.UUID `json:"job_id" binding:"required"`
}

type ChangeStageInput struct {
	StageID uint `json:"stage_id" binding:"required"`
}
