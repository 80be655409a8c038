// Package poller drives the client-side reminder loop: on a fixed cadence it
// walks every note carrying a rule, surfaces a notification for each due
// occurrence, and advances or clears the rule through the shared resolver.
package poller

import (
	"context"
	"time"

	"notewise/models"
	"notewise/recurrence"
	"notewise/utils"

	"go.uber.org/zap"
)

// DefaultInterval matches the web client's 30-second check loop.
const DefaultInterval = 30 * time.Second

// NoteStore is the slice of the note repository the poller needs.
type NoteStore interface {
	ListWithReminders(ctx context.Context) ([]models.Note, error)
	ReplaceReminder(ctx context.Context, noteID string, rem *models.Reminder, updatedAt int64) error
}

// Notifier surfaces a due reminder to the user.
type Notifier interface {
	Notify(note models.Note)
}

// Poller owns the check loop. Construct with New, then Start it on a
// goroutine; cancelling the context stops it. Now is the injectable clock.
type Poller struct {
	store    NoteStore
	notifier Notifier
	interval time.Duration

	Now func() time.Time
}

func New(store NoteStore, notifier Notifier, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		store:    store,
		notifier: notifier,
		interval: interval,
		Now:      time.Now,
	}
}

// Start runs ticks until ctx is cancelled. Ticks are synchronous and never
// overlap: the ticker is only consumed again once the previous tick's work
// has completed.
func (p *Poller) Start(ctx context.Context) {
	logger := utils.GetLogger()
	logger.Info("poller started", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick evaluates every reminder once against the current clock. Exported so
// a due check can be forced right after a save.
func (p *Poller) Tick(ctx context.Context) {
	logger := utils.GetLogger()
	now := p.Now()

	notes, err := p.store.ListWithReminders(ctx)
	if err != nil {
		// Transient store trouble: skip this tick, the next one reconciles.
		logger.Warn("poller tick skipped, store unavailable", zap.Error(err))
		return
	}

	for _, note := range notes {
		rem := note.Reminder
		if rem == nil || rem.NextDueDate == nil || *rem.NextDueDate > now.UnixMilli() {
			continue
		}

		p.notifier.Notify(note)

		// Advancing with ref = now keeps due values strictly increasing, so
		// the same instant is never fired twice. A single rule is cleared
		// after its one occurrence regardless of remaining times of day.
		var updated *models.Reminder
		if rem.Kind != models.RecurrenceSingle {
			if next, ok := recurrence.Next(*rem, now); ok {
				rule := *rem
				due := next.UnixMilli()
				rule.NextDueDate = &due
				updated = &rule
			}
		}

		if err := p.store.ReplaceReminder(ctx, note.ID, updated, now.UnixMilli()); err != nil {
			// Isolated per note: the next tick retries this one.
			logger.Warn("failed to persist advanced reminder",
				zap.String("noteId", note.ID), zap.Error(err))
		}
	}
}

// LogNotifier is the default Notifier; it reports the due note through the
// application log. Desktop builds plug in a platform notifier instead.
type LogNotifier struct{}

func (LogNotifier) Notify(note models.Note) {
	preview := note.Content
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	utils.GetLogger().Info("reminder due",
		zap.String("noteId", note.ID),
		zap.String("title", note.Title),
		zap.String("preview", preview),
	)
}
