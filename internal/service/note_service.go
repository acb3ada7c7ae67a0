package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/dto"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"github.com/hirewire/hirewire/pkg/apperror"
)

type NoteService interface {
	CreateNote(ctx context.Context, input dto.CreateNoteInput, actorID uuid.UUID) (*model.Note, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Note, error)
	UpdateNote(ctx context.Context, id uuid.UUID, note string, actorID uuid.UUID) (*model.Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
}

type noteService struct {
	repo          repository.NoteRepository
	notifications NotificationService
}

func NewNoteService(repo repository.NoteRepository, notifications NotificationService) NoteService {
	return &noteService{repo: repo, notifications: notifications}
}

func (s *noteService) CreateNote(ctx context.Context, input dto.CreateNoteInput, actorID uuid.UUID) (*model.Note, error) {
	note := &model.Note{
		Note:        input.Note,
		CandidateID: input.CandidateID,
		UserID:      actorID,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	// Mentions drive the fan-out: only users named in the note hear about it.
	seen := map[uuid.UUID]bool{actorID: true}
	for _, mention := range input.Mentions {
		if seen[mention] {
			continue
		}
		seen[mention] = true
		err := s.notifications.Create(ctx, &model.Notification{
			UserID:      actorID,
			Receiver:    mention,
			CandidateID: &input.CandidateID,
			Message:     "A candidate has a note",
			Type:        model.NotificationNote,
		})
		if err != nil {
			log.Printf("note: notify %s failed: %v", mention, err)
		}
	}

	return note, nil
}

func (s *noteService) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Note, error) {
	return s.repo.FindByCandidate(ctx, candidateID)
}

func (s *noteService) UpdateNote(ctx context.Context, id uuid.UUID, text string, actorID uuid.UUID) (*model.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UserID != actorID {
		return nil, apperror.ErrForbidden
	}

	note.Note = text
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *noteService) DeleteNote(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if note.UserID != actorID {
		return apperror.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
