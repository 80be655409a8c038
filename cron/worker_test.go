package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"notewise/models"
	"notewise/services/notification"
)

type fakeRepo struct {
	records map[string]*models.ReminderRecord
}

func newFakeRepo(recs ...*models.ReminderRecord) *fakeRepo {
	f := &fakeRepo{records: make(map[string]*models.ReminderRecord)}
	for _, r := range recs {
		cp := *r
		f.records[r.NoteID] = &cp
	}
	return f
}

func (f *fakeRepo) Upsert(ctx context.Context, rec *models.ReminderRecord) error {
	cp := *rec
	f.records[rec.NoteID] = &cp
	return nil
}

func (f *fakeRepo) GetByNoteID(ctx context.Context, noteID string) (*models.ReminderRecord, error) {
	if rec, ok := f.records[noteID]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindDue(ctx context.Context, now int64) ([]models.ReminderRecord, error) {
	var due []models.ReminderRecord
	for _, rec := range f.records {
		if rec.SendAt <= now {
			due = append(due, *rec)
		}
	}
	return due, nil
}

func (f *fakeRepo) Rearm(ctx context.Context, noteID string, sendAt int64, rule models.Reminder) error {
	rec, ok := f.records[noteID]
	if !ok {
		return errors.New("gone")
	}
	rec.SendAt = sendAt
	rec.Reminder = rule
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, noteID string) error {
	delete(f.records, noteID)
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendPush(ctx context.Context, token, title, body string, data map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, token)
	return nil
}

func sendTask(t *testing.T, noteID string, dueAt int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(models.ReminderTaskPayload{NoteID: noteID, DueAt: dueAt})
	require.NoError(t, err)
	return asynq.NewTask(TypeReminderSend, payload)
}

func dailyRecord(noteID string, sendAt time.Time) *models.ReminderRecord {
	return &models.ReminderRecord{
		NoteID: noteID,
		Token:  "tok-" + noteID,
		Title:  "title",
		Body:   "body",
		SendAt: sendAt.UnixMilli(),
		Reminder: models.Reminder{
			Kind:      models.RecurrenceDaily,
			StartDate: sendAt.Truncate(24 * time.Hour).UnixMilli(),
			Times:     []string{"00:00"},
		},
	}
}

func TestHandleReminderTaskSendsAndRearms(t *testing.T) {
	t.Parallel()

	due := time.Now().Add(-time.Minute)
	rec := dailyRecord("n1", due)
	repo := newFakeRepo(rec)
	sender := &fakeSender{}

	handler := handleReminderTask(repo, sender)
	require.NoError(t, handler(context.Background(), sendTask(t, "n1", rec.SendAt)))

	require.Equal(t, []string{"tok-n1"}, sender.sent)
	advanced := repo.records["n1"]
	require.NotNil(t, advanced, "record must be re-armed, not deleted")
	require.Greater(t, advanced.SendAt, rec.SendAt)
	require.NotNil(t, advanced.Reminder.NextDueDate)
	require.Equal(t, advanced.SendAt, *advanced.Reminder.NextDueDate)
}

func TestHandleReminderTaskRetiresSingleRule(t *testing.T) {
	t.Parallel()

	due := time.Now().Add(-time.Minute)
	rec := &models.ReminderRecord{
		NoteID: "n1",
		Token:  "tok-n1",
		SendAt: due.UnixMilli(),
		Reminder: models.Reminder{
			Kind:      models.RecurrenceSingle,
			StartDate: due.Truncate(24 * time.Hour).UnixMilli(),
			Times:     []string{"09:00", "23:59"},
		},
	}
	repo := newFakeRepo(rec)
	sender := &fakeSender{}

	handler := handleReminderTask(repo, sender)
	require.NoError(t, handler(context.Background(), sendTask(t, "n1", rec.SendAt)))

	require.Equal(t, []string{"tok-n1"}, sender.sent)
	// Delivered once; later times of day do not resurrect a single rule.
	require.NotContains(t, repo.records, "n1")
}

func TestHandleReminderTaskDeletesOnDeadToken(t *testing.T) {
	t.Parallel()

	rec := dailyRecord("n1", time.Now().Add(-time.Minute))
	repo := newFakeRepo(rec)
	sender := &fakeSender{err: notification.ErrTokenNotRegistered}

	handler := handleReminderTask(repo, sender)
	require.NoError(t, handler(context.Background(), sendTask(t, "n1", rec.SendAt)))

	require.NotContains(t, repo.records, "n1")
}

func TestHandleReminderTaskLeavesRecordOnTransientFailure(t *testing.T) {
	t.Parallel()

	rec := dailyRecord("n1", time.Now().Add(-time.Minute))
	repo := newFakeRepo(rec)
	sender := &fakeSender{err: errors.New("fcm unavailable")}

	handler := handleReminderTask(repo, sender)
	require.NoError(t, handler(context.Background(), sendTask(t, "n1", rec.SendAt)))

	// Still due; the next dispatcher pass retries it.
	kept := repo.records["n1"]
	require.NotNil(t, kept)
	require.Equal(t, rec.SendAt, kept.SendAt)
}

func TestHandleReminderTaskSkipsStaleOccurrence(t *testing.T) {
	t.Parallel()

	rec := dailyRecord("n1", time.Now().Add(time.Hour))
	repo := newFakeRepo(rec)
	sender := &fakeSender{}

	// Payload carries an older sendAt: the record was re-armed after the
	// scan, so this occurrence is obsolete.
	handler := handleReminderTask(repo, sender)
	require.NoError(t, handler(context.Background(), sendTask(t, "n1", rec.SendAt-1000)))

	require.Empty(t, sender.sent)
	require.Contains(t, repo.records, "n1")
}

func TestHandleReminderTaskSkipsDeletedRecord(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	sender := &fakeSender{}

	handler := handleReminderTask(repo, sender)
	require.NoError(t, handler(context.Background(), sendTask(t, "gone", 42)))
	require.Empty(t, sender.sent)
}
