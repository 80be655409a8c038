package reminderRepo

import (
	"context"

	"notewise/models"
)

// ReminderRepository defines data access for server-side reminder records.
// Each record is keyed by note ID and updated as a whole document, so a
// concurrent reader never observes a partially re-armed reminder.
type ReminderRepository interface {
	// Upsert creates or replaces the record for its note ID.
	Upsert(ctx context.Context, rec *models.ReminderRecord) error
	// GetByNoteID retrieves a single record, nil if absent.
	GetByNoteID(ctx context.Context, noteID string) (*models.ReminderRecord, error)
	// FindDue returns all records whose sendAt is at or before now (epoch ms).
	FindDue(ctx context.Context, now int64) ([]models.ReminderRecord, error)
	// Rearm atomically replaces the record's schedule after a delivery.
	Rearm(ctx context.Context, noteID string, sendAt int64, rule models.Reminder) error
	// Delete removes the record; deleting an absent record is not an error.
	Delete(ctx context.Context, noteID string) error
}
