package dto

import "github.com/google/uuid"

type CreateFeedbackInput struct {
	CandidateID uuid.UUID `json:"candidate_id" binding:"required"`
	Comment     string    `json:"comment" binding:"required"`
	Score       int       `json:"score" binding:"min=0,max=10"`
}

type UpdateFeedbackInput struct {
	Comment *string `json:"comment"`
	Score   *int    `json:"score" binding:"omitempty,min=0,max=10"`
}

type CreateNoteInput struct {
	CandidateID uuid.UUID   `json:"candidate_id" binding:"required"`
	Note        string      `json:"note" binding:"required"`
	Mentions    []uuid.UUID `json:"mentions"`
}
