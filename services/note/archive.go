package note

import (
	"context"
	"fmt"

	noteRepo "notewise/database/repository/note"
	"notewise/models"

	"github.com/google/uuid"
)

// ArchiveVersion is bumped when the export envelope changes shape.
const ArchiveVersion = 2

// Export produces a full snapshot of live and trashed notes plus categories.
func (s *DefaultNoteService) Export(ctx context.Context) (*models.Archive, error) {
	live, err := s.Repo.List(ctx, noteRepo.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	trashed, err := s.Repo.List(ctx, noteRepo.ListFilter{Trash: true})
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	tpls, err := s.Repo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}

	return &models.Archive{
		Version:    ArchiveVersion,
		ExportedAt: s.Now().UnixMilli(),
		Notes:      append(live, trashed...),
		Categories: cats,
		Templates:  tpls,
	}, nil
}

// Import merges an archive into the store. Existing notes win on ID
// collision: the incoming note gets a fresh ID instead of overwriting.
// Reminder rules come along but their next-due timestamps are recomputed
// against import time, so stale schedules do not fire retroactively.
// Returns the number of notes imported.
func (s *DefaultNoteService) Import(ctx context.Context, archive *models.Archive) (int, error) {
	if archive == nil {
		return 0, fmt.Errorf("Import: empty archive")
	}

	existingCats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("Import: %w", err)
	}
	known := make(map[string]bool, len(existingCats))
	for _, c := range existingCats {
		known[c.ID] = true
	}
	for _, c := range archive.Categories {
		if known[c.ID] {
			continue
		}
		cat := c
		if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
			return 0, fmt.Errorf("Import: %w", err)
		}
	}

	// Templates merge the same way as categories: known IDs stay as they are.
	for _, tpl := range archive.Templates {
		existing, err := s.Repo.GetTemplateByID(ctx, tpl.ID)
		if err != nil {
			return 0, fmt.Errorf("Import: %w", err)
		}
		if existing != nil {
			continue
		}
		incoming := tpl
		if incoming.ID == "" {
			incoming.ID = uuid.NewString()
		}
		if err := s.Repo.SaveTemplate(ctx, &incoming); err != nil {
			return 0, fmt.Errorf("Import: %w", err)
		}
	}

	imported := 0
	for _, n := range archive.Notes {
		incoming := n

		existing, err := s.Repo.GetByID(ctx, incoming.ID)
		if err != nil {
			return imported, fmt.Errorf("Import: %w", err)
		}
		if existing != nil {
			incoming.ID = uuid.NewString()
		}

		if incoming.Reminder != nil {
			rem, err := s.processReminder(incoming.Reminder)
			if err != nil {
				// A malformed rule should not sink the whole archive; the
				// note arrives without its reminder.
				rem = nil
			}
			incoming.Reminder = rem
		}

		if err := s.Repo.Create(ctx, &incoming); err != nil {
			return imported, fmt.Errorf("Import: %w", err)
		}
		imported++
	}
	return imported, nil
}
