package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"notewise/config"
	reminderRepo "notewise/database/repository/reminder"
	"notewise/models"

	"github.com/hibiken/asynq"
)

// Dispatcher periodically scans the reminder store for due records and
// enqueues one send task per record. Delivery itself happens in the worker;
// the scan loop stays cheap and never blocks on FCM.
type Dispatcher struct {
	repo     reminderRepo.ReminderRepository
	client   *asynq.Client
	interval time.Duration
	now      func() time.Time
}

// NewDispatcher builds a dispatcher on the configured redis queue. Interval
// comes from DISPATCH_INTERVAL_SECONDS.
func NewDispatcher(repo reminderRepo.ReminderRepository) *Dispatcher {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	interval := time.Duration(config.AppConfig.DispatchIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dispatcher{
		repo:     repo,
		client:   client,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the scan loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	log.Printf("[Dispatcher] scanning for due reminders every %s", d.interval)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	defer d.client.Close()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Dispatcher] stopped")
			return
		case <-ticker.C:
			d.scan(ctx)
		}
	}
}

func (d *Dispatcher) scan(ctx context.Context) {
	now := d.now().UnixMilli()
	records, err := d.repo.FindDue(ctx, now)
	if err != nil {
		log.Printf("[Dispatcher] failed to query due reminders: %v", err)
		return
	}

	for _, rec := range records {
		if err := d.enqueue(ctx, rec); err != nil {
			// One record's failure never blocks the rest of the batch.
			log.Printf("[Dispatcher] failed to enqueue reminder for note %s: %v", rec.NoteID, err)
		}
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, rec models.ReminderRecord) error {
	payload, err := json.Marshal(models.ReminderTaskPayload{
		NoteID: rec.NoteID,
		DueAt:  rec.SendAt,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeReminderSend, payload)
	// MaxRetry 0: a failed send leaves the record due, and the next scan pass
	// is the retry mechanism. The task ID dedupes re-enqueues of the same
	// occurrence while a send is still in flight.
	_, err = d.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(0),
		asynq.TaskID(fmt.Sprintf("reminder:%s:%d", rec.NoteID, rec.SendAt)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}
