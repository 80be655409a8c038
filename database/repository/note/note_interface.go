package noteRepo

import (
	"context"

	"notewise/models"
)

// Sort orders accepted by ListFilter.Sort, mirroring the editor's dropdown.
const (
	SortUpdatedDesc = "updatedAt_desc"
	SortUpdatedAsc  = "updatedAt_asc"
	SortCreatedDesc = "createdAt_desc"
	SortCreatedAsc  = "createdAt_asc"
	SortTitleAsc    = "title_asc"
	SortTitleDesc   = "title_desc"
)

// ListFilter narrows List results. Zero value lists all live notes, most
// recently updated first.
type ListFilter struct {
	CategoryID    string
	FavoritesOnly bool
	Search        string // matches title or content, case-insensitive
	Trash         bool   // list soft-deleted notes instead of live ones
	Sort          string // one of the Sort* constants; unknown values fall back to SortUpdatedDesc
}

// NoteRepository defines data access for notes and categories.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context, filter ListFilter) ([]models.Note, error)
	// ListWithReminders returns live notes carrying a reminder rule; the
	// poller walks this set every tick.
	ListWithReminders(ctx context.Context) ([]models.Note, error)
	// ReplaceReminder atomically swaps a note's reminder (nil clears it).
	ReplaceReminder(ctx context.Context, noteID string, rem *models.Reminder, updatedAt int64) error
	SoftDelete(ctx context.Context, id string, deletedAt int64) error
	Restore(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	// PurgeTrash permanently deletes every soft-deleted note and returns how
	// many were removed.
	PurgeTrash(ctx context.Context) (int64, error)

	CreateCategory(ctx context.Context, cat *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// SaveTemplate creates or replaces a template by ID.
	SaveTemplate(ctx context.Context, tpl *models.Template) error
	GetTemplateByID(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}
