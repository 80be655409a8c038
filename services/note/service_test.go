package note

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	noteRepo "notewise/database/repository/note"
	"notewise/models"
)

type memRepo struct {
	notes map[string]*models.Note
	cats  map[string]*models.Category
	tpls  map[string]*models.Template
}

func newMemRepo() *memRepo {
	return &memRepo{
		notes: make(map[string]*models.Note),
		cats:  make(map[string]*models.Category),
		tpls:  make(map[string]*models.Template),
	}
}

func (m *memRepo) Create(ctx context.Context, note *models.Note) error {
	cp := *note
	m.notes[note.ID] = &cp
	return nil
}

func (m *memRepo) Update(ctx context.Context, note *models.Note) error {
	cp := *note
	m.notes[note.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	if n, ok := m.notes[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, nil
}

func (m *memRepo) List(ctx context.Context, filter noteRepo.ListFilter) ([]models.Note, error) {
	var out []models.Note
	for _, n := range m.notes {
		if filter.Trash != n.InTrash() {
			continue
		}
		if filter.FavoritesOnly && !n.IsFavorite {
			continue
		}
		if filter.CategoryID != "" && n.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (m *memRepo) ListWithReminders(ctx context.Context) ([]models.Note, error) {
	var out []models.Note
	for _, n := range m.notes {
		if !n.InTrash() && n.Reminder != nil {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memRepo) ReplaceReminder(ctx context.Context, noteID string, rem *models.Reminder, updatedAt int64) error {
	n := m.notes[noteID]
	n.Reminder = rem
	n.UpdatedAt = updatedAt
	return nil
}

func (m *memRepo) SoftDelete(ctx context.Context, id string, deletedAt int64) error {
	m.notes[id].DeletedAt = &deletedAt
	return nil
}

func (m *memRepo) Restore(ctx context.Context, id string) error {
	m.notes[id].DeletedAt = nil
	return nil
}

func (m *memRepo) Purge(ctx context.Context, id string) error {
	delete(m.notes, id)
	return nil
}

func (m *memRepo) PurgeTrash(ctx context.Context) (int64, error) {
	var purged int64
	for id, n := range m.notes {
		if n.InTrash() {
			delete(m.notes, id)
			purged++
		}
	}
	return purged, nil
}

func (m *memRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	cp := *cat
	m.cats[cat.ID] = &cp
	return nil
}

func (m *memRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.cats {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memRepo) DeleteCategory(ctx context.Context, id string) error {
	delete(m.cats, id)
	return nil
}

func (m *memRepo) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	cp := *tpl
	m.tpls[tpl.ID] = &cp
	return nil
}

func (m *memRepo) GetTemplateByID(ctx context.Context, id string) (*models.Template, error) {
	if tpl, ok := m.tpls[id]; ok {
		cp := *tpl
		return &cp, nil
	}
	return nil, nil
}

func (m *memRepo) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var out []models.Template
	for _, tpl := range m.tpls {
		out = append(out, *tpl)
	}
	return out, nil
}

func (m *memRepo) DeleteTemplate(ctx context.Context, id string) error {
	delete(m.tpls, id)
	return nil
}

func newTestService(t *testing.T, now time.Time) (*DefaultNoteService, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc, err := NewDefaultNoteService(repo, nil)
	require.NoError(t, err)
	svc.Now = func() time.Time { return now }
	return svc, repo
}

func TestCreateNoteComputesNextDue(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, day.Add(8*time.Hour))

	note, err := svc.CreateNote(context.Background(), NoteInput{
		Title:   "groceries",
		Content: "- [ ] milk",
		Reminder: &models.Reminder{
			Kind:      models.RecurrenceDaily,
			StartDate: day.UnixMilli(),
			Times:     []string{"09:00"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, note.ID)
	require.NotNil(t, note.Reminder)
	require.NotNil(t, note.Reminder.NextDueDate)
	require.Equal(t, day.Add(9*time.Hour).UnixMilli(), *note.Reminder.NextDueDate)
}

func TestCreateNoteRejectsInvalidReminder(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, time.Now())
	_, err := svc.CreateNote(context.Background(), NoteInput{
		Title: "x",
		Reminder: &models.Reminder{
			Kind:  models.RecurrenceWeekly,
			Times: []string{"09:00"},
		},
	})
	require.Error(t, err)
	require.Empty(t, repo.notes)
}

func TestUpdateNoteResetsSingleReminderEligibility(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, day.Add(8*time.Hour))

	created, err := svc.CreateNote(context.Background(), NoteInput{
		Title: "call mom",
		Reminder: &models.Reminder{
			Kind:      models.RecurrenceSingle,
			StartDate: day.UnixMilli(),
			Times:     []string{"09:00", "15:00"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, day.Add(9*time.Hour).UnixMilli(), *created.Reminder.NextDueDate)

	// After the first slot fired, a re-save resolves against the new now and
	// picks the remaining slot.
	svc.Now = func() time.Time { return day.Add(10 * time.Hour) }
	updated, err := svc.UpdateNote(context.Background(), created.ID, NoteInput{
		Title: "call mom",
		Reminder: &models.Reminder{
			Kind:      models.RecurrenceSingle,
			StartDate: day.UnixMilli(),
			Times:     []string{"09:00", "15:00"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Reminder.NextDueDate)
	require.Equal(t, day.Add(15*time.Hour).UnixMilli(), *updated.Reminder.NextDueDate)
}

func TestTrashAndRestore(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Now())
	note, err := svc.CreateNote(context.Background(), NoteInput{Title: "n"})
	require.NoError(t, err)

	require.NoError(t, svc.TrashNote(context.Background(), note.ID))
	live, err := svc.ListNotes(context.Background(), noteRepo.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, live)

	trashed, err := svc.ListNotes(context.Background(), noteRepo.ListFilter{Trash: true})
	require.NoError(t, err)
	require.Len(t, trashed, 1)

	require.NoError(t, svc.RestoreNote(context.Background(), note.ID))
	live, err = svc.ListNotes(context.Background(), noteRepo.ListFilter{})
	require.NoError(t, err)
	require.Len(t, live, 1)
}

func TestEmptyTrashPurgesOnlyTrashedNotes(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, time.Now())
	kept, err := svc.CreateNote(context.Background(), NoteInput{Title: "keep"})
	require.NoError(t, err)
	gone1, err := svc.CreateNote(context.Background(), NoteInput{Title: "gone 1"})
	require.NoError(t, err)
	gone2, err := svc.CreateNote(context.Background(), NoteInput{Title: "gone 2"})
	require.NoError(t, err)

	require.NoError(t, svc.TrashNote(context.Background(), gone1.ID))
	require.NoError(t, svc.TrashNote(context.Background(), gone2.ID))

	purged, err := svc.EmptyTrash(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), purged)
	require.Len(t, repo.notes, 1)
	require.Contains(t, repo.notes, kept.ID)
}

func TestSaveTemplateCreatesAndUpdates(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, time.Now())

	created, err := svc.SaveTemplate(context.Background(), models.Template{
		Title:   "  Weekly review  ",
		Content: "## Wins\n\n## Blockers",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Weekly review", created.Title)

	updated, err := svc.SaveTemplate(context.Background(), models.Template{
		ID:      created.ID,
		Title:   "Weekly review",
		Content: "## Wins\n\n## Blockers\n\n## Next",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Len(t, repo.tpls, 1)
	require.Contains(t, repo.tpls[created.ID].Content, "## Next")
}

func TestSaveTemplateRejectsEmptyTitleAndUnknownID(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, time.Now())

	_, err := svc.SaveTemplate(context.Background(), models.Template{Title: "   "})
	require.Error(t, err)
	require.Empty(t, repo.tpls)

	// An explicit ID must refer to an existing template; updates never
	// resurrect a deleted one.
	_, err = svc.SaveTemplate(context.Background(), models.Template{ID: "ghost", Title: "x"})
	require.Error(t, err)
	require.Empty(t, repo.tpls)
}

func TestDeleteTemplate(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, time.Now())
	created, err := svc.SaveTemplate(context.Background(), models.Template{Title: "scratch"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTemplate(context.Background(), created.ID))
	require.Empty(t, repo.tpls)
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	src, _ := newTestService(t, now)

	_, err := src.CreateCategory(context.Background(), "work")
	require.NoError(t, err)
	created, err := src.CreateNote(context.Background(), NoteInput{Title: "a", Content: "body"})
	require.NoError(t, err)
	tpl, err := src.SaveTemplate(context.Background(), models.Template{Title: "standup", Content: "## Yesterday"})
	require.NoError(t, err)

	archive, err := src.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, ArchiveVersion, archive.Version)
	require.Len(t, archive.Notes, 1)
	require.Len(t, archive.Categories, 1)
	require.Len(t, archive.Templates, 1)

	dst, dstRepo := newTestService(t, now)
	imported, err := dst.Import(context.Background(), archive)
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	require.Contains(t, dstRepo.notes, created.ID)
	require.Contains(t, dstRepo.tpls, tpl.ID)
}

func TestImportKeepsExistingTemplateOnIDCollision(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, time.Now())
	existing, err := svc.SaveTemplate(context.Background(), models.Template{Title: "mine", Content: "local"})
	require.NoError(t, err)

	archive := &models.Archive{
		Version: ArchiveVersion,
		Templates: []models.Template{
			{ID: existing.ID, Title: "theirs", Content: "incoming"},
		},
	}
	_, err = svc.Import(context.Background(), archive)
	require.NoError(t, err)
	require.Len(t, repo.tpls, 1)
	require.Equal(t, "mine", repo.tpls[existing.ID].Title)
}

func TestImportRegeneratesCollidingIDs(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, repo := newTestService(t, now)

	existing, err := svc.CreateNote(context.Background(), NoteInput{Title: "keep me"})
	require.NoError(t, err)

	archive := &models.Archive{
		Version: ArchiveVersion,
		Notes: []models.Note{
			{ID: existing.ID, Title: "incoming"},
		},
	}
	imported, err := svc.Import(context.Background(), archive)
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	// The existing note is untouched; the incoming one landed under a new ID.
	require.Len(t, repo.notes, 2)
	require.Equal(t, "keep me", repo.notes[existing.ID].Title)
}

func TestImportDropsMalformedReminders(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, time.Now())

	archive := &models.Archive{
		Version: ArchiveVersion,
		Notes: []models.Note{
			{
				ID:    "n1",
				Title: "bad rule",
				Reminder: &models.Reminder{
					Kind:  models.RecurrenceWeekly,
					Times: []string{"09:00"},
				},
			},
		},
	}
	imported, err := svc.Import(context.Background(), archive)
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	require.Nil(t, repo.notes["n1"].Reminder)
}

func TestRenderNoteHTML(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, time.Now())
	note, err := svc.CreateNote(context.Background(), NoteInput{
		Title:   "checklist",
		Content: "# Today\n\n- [ ] milk\n- [x] bread\n",
	})
	require.NoError(t, err)

	html, err := svc.RenderNoteHTML(context.Background(), note.ID)
	require.NoError(t, err)
	require.True(t, strings.Contains(html, "<h1"), "heading should render")
	require.True(t, strings.Contains(html, "checkbox"), "task list should render")
}
