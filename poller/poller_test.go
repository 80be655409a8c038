package poller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"notewise/models"
)

type fakeStore struct {
	notes    []models.Note
	replaced map[string]*models.Reminder
	failList bool
}

func (f *fakeStore) ListWithReminders(ctx context.Context) ([]models.Note, error) {
	if f.failList {
		return nil, context.DeadlineExceeded
	}
	return f.notes, nil
}

func (f *fakeStore) ReplaceReminder(ctx context.Context, noteID string, rem *models.Reminder, updatedAt int64) error {
	if f.replaced == nil {
		f.replaced = make(map[string]*models.Reminder)
	}
	f.replaced[noteID] = rem
	for i := range f.notes {
		if f.notes[i].ID == noteID {
			f.notes[i].Reminder = rem
		}
	}
	return nil
}

type fakeNotifier struct {
	fired []string
}

func (f *fakeNotifier) Notify(note models.Note) {
	f.fired = append(f.fired, note.ID)
}

func msAt(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func noteWithRule(id string, rule models.Reminder) models.Note {
	return models.Note{ID: id, Title: "t", Content: "c", Reminder: &rule}
}

func TestTickFiresAndAdvancesDailyRule(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	nine := day.Add(9 * time.Hour)

	rule := models.Reminder{
		Kind:        models.RecurrenceDaily,
		StartDate:   day.UnixMilli(),
		Times:       []string{"09:00"},
		NextDueDate: msAt(nine),
	}
	store := &fakeStore{notes: []models.Note{noteWithRule("n1", rule)}}
	notifier := &fakeNotifier{}

	p := New(store, notifier, time.Second)
	now := nine.Add(30 * time.Second)
	p.Now = func() time.Time { return now }

	p.Tick(context.Background())

	require.Equal(t, []string{"n1"}, notifier.fired)
	advanced := store.replaced["n1"]
	require.NotNil(t, advanced)
	require.NotNil(t, advanced.NextDueDate)
	require.Equal(t, day.AddDate(0, 0, 1).Add(9*time.Hour).UnixMilli(), *advanced.NextDueDate)
}

func TestTickDoesNotRefireSameInstant(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	nine := day.Add(9 * time.Hour)

	rule := models.Reminder{
		Kind:        models.RecurrenceDaily,
		StartDate:   day.UnixMilli(),
		Times:       []string{"09:00"},
		NextDueDate: msAt(nine),
	}
	store := &fakeStore{notes: []models.Note{noteWithRule("n1", rule)}}
	notifier := &fakeNotifier{}

	p := New(store, notifier, time.Second)
	now := nine
	p.Now = func() time.Time { return now }

	p.Tick(context.Background())
	p.Tick(context.Background())

	// Second tick sees the advanced due date (tomorrow) and stays quiet.
	require.Equal(t, []string{"n1"}, notifier.fired)
}

func TestTickClearsSingleRuleAfterFiring(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	noon := day.Add(12 * time.Hour)

	// Even with a later time listed, a single rule fires exactly once.
	rule := models.Reminder{
		Kind:        models.RecurrenceSingle,
		StartDate:   day.UnixMilli(),
		Times:       []string{"12:00", "20:00"},
		NextDueDate: msAt(noon),
	}
	store := &fakeStore{notes: []models.Note{noteWithRule("n1", rule)}}
	notifier := &fakeNotifier{}

	p := New(store, notifier, time.Second)
	p.Now = func() time.Time { return noon.Add(time.Second) }

	p.Tick(context.Background())

	require.Equal(t, []string{"n1"}, notifier.fired)
	cleared, ok := store.replaced["n1"]
	require.True(t, ok)
	require.Nil(t, cleared)
}

func TestTickClearsExhaustedRule(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	nine := day.Add(9 * time.Hour)
	end := day.UnixMilli()

	rule := models.Reminder{
		Kind:        models.RecurrenceDaily,
		StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		Times:       []string{"09:00"},
		EndDate:     &end,
		NextDueDate: msAt(nine),
	}
	store := &fakeStore{notes: []models.Note{noteWithRule("n1", rule)}}
	notifier := &fakeNotifier{}

	p := New(store, notifier, time.Second)
	p.Now = func() time.Time { return nine.Add(time.Minute) }

	p.Tick(context.Background())

	require.Equal(t, []string{"n1"}, notifier.fired)
	cleared, ok := store.replaced["n1"]
	require.True(t, ok)
	require.Nil(t, cleared)
}

func TestTickSkipsUnduedAndUnarmedRules(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	future := models.Reminder{
		Kind:        models.RecurrenceDaily,
		StartDate:   day.UnixMilli(),
		Times:       []string{"09:00"},
		NextDueDate: msAt(day.Add(9 * time.Hour)),
	}
	unarmed := models.Reminder{
		Kind:      models.RecurrenceDaily,
		StartDate: day.UnixMilli(),
		Times:     []string{"09:00"},
	}
	store := &fakeStore{notes: []models.Note{
		noteWithRule("future", future),
		noteWithRule("unarmed", unarmed),
	}}
	notifier := &fakeNotifier{}

	p := New(store, notifier, time.Second)
	p.Now = func() time.Time { return day.Add(8 * time.Hour) }

	p.Tick(context.Background())

	require.Empty(t, notifier.fired)
	require.Empty(t, store.replaced)
}

func TestTickSurvivesStoreOutage(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failList: true}
	notifier := &fakeNotifier{}

	p := New(store, notifier, time.Second)
	p.Now = time.Now

	// Must not panic and must not fire anything.
	p.Tick(context.Background())
	require.Empty(t, notifier.fired)
}
