package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"notewise/config"
	reminderRepo "notewise/database/repository/reminder"
	"notewise/models"
	"notewise/recurrence"
	"notewise/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeReminderSend = "reminder:send"

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(repo reminderRepo.ReminderRepository, notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, handleReminderTask(repo, notifSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleReminderTask sends the push for one due record and advances or
// retires its schedule. Every failure path returns nil: the record stays due
// and the next dispatcher pass retries it, except the permanently-invalid
// token case which deletes the record outright.
func handleReminderTask(repo reminderRepo.ReminderRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderTaskPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		rec, err := repo.GetByNoteID(ctx, p.NoteID)
		if err != nil {
			log.Printf("[ReminderHandler] failed to load reminder for note %s: %v", p.NoteID, err)
			return nil
		}
		if rec == nil || rec.SendAt != p.DueAt {
			// Deleted or re-armed since the scan; this occurrence is obsolete.
			return nil
		}

		data := map[string]string{
			"noteId": rec.NoteID,
			"dueAt":  strconv.FormatInt(rec.SendAt, 10),
		}
		if err := notifSvc.SendPush(ctx, rec.Token, rec.Title, rec.Body, data); err != nil {
			if errors.Is(err, notification.ErrTokenNotRegistered) {
				log.Printf("[ReminderHandler] token gone for note %s, deleting reminder", rec.NoteID)
				if derr := repo.Delete(ctx, rec.NoteID); derr != nil {
					log.Printf("[ReminderHandler] failed to delete reminder for note %s: %v", rec.NoteID, derr)
				}
				return nil
			}
			log.Printf("[ReminderHandler] failed to send notification for note %s: %v", rec.NoteID, err)
			return nil
		}

		advance(ctx, repo, rec)
		return nil
	}
}

// advance resolves the rule against delivery time and either re-arms the
// record or deletes it when the rule is exhausted. A single rule is retired
// unconditionally once its occurrence has been delivered, even when the rule
// lists further times of day.
func advance(ctx context.Context, repo reminderRepo.ReminderRepository, rec *models.ReminderRecord) {
	var (
		next time.Time
		ok   bool
	)
	if rec.Reminder.Kind != models.RecurrenceSingle {
		next, ok = recurrence.Next(rec.Reminder, time.Now())
	}
	if !ok {
		if err := repo.Delete(ctx, rec.NoteID); err != nil {
			log.Printf("[ReminderHandler] failed to retire reminder for note %s: %v", rec.NoteID, err)
		}
		return
	}

	rule := rec.Reminder
	due := next.UnixMilli()
	rule.NextDueDate = &due
	if err := repo.Rearm(ctx, rec.NoteID, due, rule); err != nil {
		log.Printf("[ReminderHandler] failed to re-arm reminder for note %s: %v", rec.NoteID, err)
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
