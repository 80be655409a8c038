// Package reminder owns the server-side reminder records: arming a schedule
// when a note is saved with a rule and tearing it down when the rule is
// removed or exhausted.
package reminder

import (
	"context"
	"fmt"
	"time"

	reminderRepo "notewise/database/repository/reminder"
	"notewise/models"
	"notewise/recurrence"
	"notewise/utils"

	"go.uber.org/zap"
)

// ArmRequest carries everything needed to schedule pushes for one note. Token
// is the opaque client registration token; the service never inspects it.
type ArmRequest struct {
	NoteID string           `json:"noteId"`
	Token  string           `json:"token"`
	Title  string           `json:"noteTitle"`
	Body   string           `json:"noteContent"`
	Rule   *models.Reminder `json:"reminder"`
}

// ReminderService manages the lifecycle of server-side reminder records.
type ReminderService interface {
	// Arm upserts the record for a note when its rule has a future
	// occurrence, and deletes it otherwise (rule removed or exhausted).
	Arm(ctx context.Context, req ArmRequest) error
	// Disarm removes the record for a note.
	Disarm(ctx context.Context, noteID string) error
}

// DefaultReminderService is the production implementation.
type DefaultReminderService struct {
	Repo reminderRepo.ReminderRepository
	Now  func() time.Time
}

func NewDefaultReminderService(repo reminderRepo.ReminderRepository) (*DefaultReminderService, error) {
	if repo == nil {
		return nil, fmt.Errorf("reminder service initialization error: repository is nil")
	}
	return &DefaultReminderService{Repo: repo, Now: time.Now}, nil
}

func (s *DefaultReminderService) Arm(ctx context.Context, req ArmRequest) error {
	if req.NoteID == "" || req.Token == "" {
		return fmt.Errorf("Arm: missing noteId or token")
	}

	if req.Rule == nil {
		return s.Disarm(ctx, req.NoteID)
	}
	if err := recurrence.Validate(*req.Rule); err != nil {
		return fmt.Errorf("Arm: invalid rule for note %s: %w", req.NoteID, err)
	}

	// A fresh save resets eligibility: the rule is resolved against "now",
	// so an already-fired single reminder that the user re-saves fires again.
	next, ok := recurrence.Next(*req.Rule, s.Now())
	if !ok {
		// Nothing left to schedule; make sure no stale record lingers.
		return s.Disarm(ctx, req.NoteID)
	}

	rule := *req.Rule
	due := next.UnixMilli()
	rule.NextDueDate = &due

	rec := &models.ReminderRecord{
		NoteID:   req.NoteID,
		Token:    req.Token,
		Title:    req.Title,
		Body:     req.Body,
		SendAt:   due,
		Reminder: rule,
	}
	if err := s.Repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("Arm: %w", err)
	}

	utils.GetLogger().Info("reminder armed",
		zap.String("noteId", req.NoteID),
		zap.Time("sendAt", next),
	)
	return nil
}

func (s *DefaultReminderService) Disarm(ctx context.Context, noteID string) error {
	if err := s.Repo.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("Disarm: %w", err)
	}
	utils.GetLogger().Info("reminder disarmed", zap.String("noteId", noteID))
	return nil
}
