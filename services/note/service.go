// Package note implements the notepad domain: note CRUD with trash,
// categories, reminder recomputation on save, markdown rendering, and the
// import/export archive.
package note

import (
	"context"
	"fmt"
	"strings"
	"time"

	noteRepo "notewise/database/repository/note"
	"notewise/models"
	"notewise/recurrence"

	"github.com/google/uuid"
)

// NoteInput is the editable portion of a note.
type NoteInput struct {
	Title      string                `json:"title"`
	Content    string                `json:"content"`
	Color      string                `json:"color"`
	CategoryID string                `json:"categoryId"`
	IsFavorite bool                  `json:"isFavorite"`
	IsPinned   bool                  `json:"isPinned"`
	Reminder   *models.Reminder      `json:"reminder"`
	Journal    []models.JournalEntry `json:"journal"`
}

// NoteService defines the notepad operations exposed over HTTP.
type NoteService interface {
	CreateNote(ctx context.Context, input NoteInput) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, input NoteInput) (*models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	ListNotes(ctx context.Context, filter noteRepo.ListFilter) ([]models.Note, error)
	TrashNote(ctx context.Context, id string) error
	RestoreNote(ctx context.Context, id string) error
	PurgeNote(ctx context.Context, id string) error
	EmptyTrash(ctx context.Context) (int64, error)

	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	SaveTemplate(ctx context.Context, tpl models.Template) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	RenderNoteHTML(ctx context.Context, id string) (string, error)
	Export(ctx context.Context) (*models.Archive, error)
	Import(ctx context.Context, archive *models.Archive) (int, error)
}

// DefaultNoteService is the production implementation.
type DefaultNoteService struct {
	Repo  noteRepo.NoteRepository
	Cache RenderCache
	Now   func() time.Time
}

func NewDefaultNoteService(repo noteRepo.NoteRepository, cache RenderCache) (*DefaultNoteService, error) {
	if repo == nil {
		return nil, fmt.Errorf("note service initialization error: repository is nil")
	}
	return &DefaultNoteService{Repo: repo, Cache: cache, Now: time.Now}, nil
}

// processReminder recomputes the cached next-due timestamp against save time.
// Saving an already-fired single reminder resets its eligibility, the same
// rule the editor applies everywhere else in the save path.
func (s *DefaultNoteService) processReminder(rem *models.Reminder) (*models.Reminder, error) {
	if rem == nil {
		return nil, nil
	}
	if err := recurrence.Validate(*rem); err != nil {
		return nil, fmt.Errorf("invalid reminder: %w", err)
	}

	rule := *rem
	if next, ok := recurrence.Next(rule, s.Now()); ok {
		due := next.UnixMilli()
		rule.NextDueDate = &due
	} else {
		rule.NextDueDate = nil
	}
	return &rule, nil
}

func (s *DefaultNoteService) CreateNote(ctx context.Context, input NoteInput) (*models.Note, error) {
	rem, err := s.processReminder(input.Reminder)
	if err != nil {
		return nil, fmt.Errorf("CreateNote: %w", err)
	}

	now := s.Now().UnixMilli()
	note := &models.Note{
		ID:         uuid.NewString(),
		Title:      input.Title,
		Content:    input.Content,
		Color:      input.Color,
		CategoryID: input.CategoryID,
		IsFavorite: input.IsFavorite,
		IsPinned:   input.IsPinned,
		Reminder:   rem,
		Journal:    input.Journal,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("CreateNote: %w", err)
	}
	return note, nil
}

func (s *DefaultNoteService) UpdateNote(ctx context.Context, id string, input NoteInput) (*models.Note, error) {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateNote: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("UpdateNote: note %s not found", id)
	}

	rem, err := s.processReminder(input.Reminder)
	if err != nil {
		return nil, fmt.Errorf("UpdateNote: %w", err)
	}

	existing.Title = input.Title
	existing.Content = input.Content
	existing.Color = input.Color
	existing.CategoryID = input.CategoryID
	existing.IsFavorite = input.IsFavorite
	existing.IsPinned = input.IsPinned
	existing.Reminder = rem
	existing.Journal = input.Journal
	existing.UpdatedAt = s.Now().UnixMilli()

	if err := s.Repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("UpdateNote: %w", err)
	}
	return existing, nil
}

func (s *DefaultNoteService) GetNote(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetNote: %w", err)
	}
	if note == nil {
		return nil, fmt.Errorf("GetNote: note %s not found", id)
	}
	return note, nil
}

func (s *DefaultNoteService) ListNotes(ctx context.Context, filter noteRepo.ListFilter) ([]models.Note, error) {
	notes, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListNotes: %w", err)
	}
	return notes, nil
}

func (s *DefaultNoteService) TrashNote(ctx context.Context, id string) error {
	if err := s.Repo.SoftDelete(ctx, id, s.Now().UnixMilli()); err != nil {
		return fmt.Errorf("TrashNote: %w", err)
	}
	return nil
}

func (s *DefaultNoteService) RestoreNote(ctx context.Context, id string) error {
	if err := s.Repo.Restore(ctx, id); err != nil {
		return fmt.Errorf("RestoreNote: %w", err)
	}
	return nil
}

func (s *DefaultNoteService) PurgeNote(ctx context.Context, id string) error {
	if err := s.Repo.Purge(ctx, id); err != nil {
		return fmt.Errorf("PurgeNote: %w", err)
	}
	return nil
}

func (s *DefaultNoteService) EmptyTrash(ctx context.Context) (int64, error) {
	purged, err := s.Repo.PurgeTrash(ctx)
	if err != nil {
		return 0, fmt.Errorf("EmptyTrash: %w", err)
	}
	return purged, nil
}

func (s *DefaultNoteService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("CreateCategory: empty name")
	}
	cat := &models.Category{ID: uuid.NewString(), Name: name}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("CreateCategory: %w", err)
	}
	return cat, nil
}

func (s *DefaultNoteService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	return cats, nil
}

func (s *DefaultNoteService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("DeleteCategory: %w", err)
	}
	return nil
}

// SaveTemplate creates a template when tpl.ID is empty and updates the
// existing one otherwise. The title must be non-empty in both cases.
func (s *DefaultNoteService) SaveTemplate(ctx context.Context, tpl models.Template) (*models.Template, error) {
	if strings.TrimSpace(tpl.Title) == "" {
		return nil, fmt.Errorf("SaveTemplate: empty title")
	}
	tpl.Title = strings.TrimSpace(tpl.Title)

	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	} else {
		existing, err := s.Repo.GetTemplateByID(ctx, tpl.ID)
		if err != nil {
			return nil, fmt.Errorf("SaveTemplate: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("SaveTemplate: template %s not found", tpl.ID)
		}
	}

	if err := s.Repo.SaveTemplate(ctx, &tpl); err != nil {
		return nil, fmt.Errorf("SaveTemplate: %w", err)
	}
	return &tpl, nil
}

func (s *DefaultNoteService) ListTemplates(ctx context.Context) ([]models.Template, error) {
	tpls, err := s.Repo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTemplates: %w", err)
	}
	return tpls, nil
}

func (s *DefaultNoteService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.Repo.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("DeleteTemplate: %w", err)
	}
	return nil
}
