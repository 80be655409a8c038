package models

// RecurrenceKind identifies how often a reminder repeats.
type RecurrenceKind string

const (
	RecurrenceSingle  RecurrenceKind = "single"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
)

// Reminder is the recurrence rule attached to a note. Dates are epoch
// milliseconds; StartDate and EndDate are normalized to local midnight by the
// editing client. NextDueDate is a denormalized cache of the last resolver
// result and is never the source of truth for the rule itself.
type Reminder struct {
	Kind        RecurrenceKind `bson:"kind" json:"type"`
	StartDate   int64          `bson:"startDate" json:"startDate"`
	Times       []string       `bson:"times" json:"times"` // "HH:MM", 24h
	DaysOfWeek  []int          `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"`
	EndDate     *int64         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	NextDueDate *int64         `bson:"nextDueDate,omitempty" json:"nextDueDate,omitempty"`
}

// ReminderRecord is the server-side document backing a scheduled push, keyed
// by note ID. SendAt mirrors Reminder.NextDueDate and is what the dispatcher
// queries against. Records are replaced wholesale on every re-arm.
type ReminderRecord struct {
	NoteID   string   `bson:"_id" json:"noteId"`
	Token    string   `bson:"token" json:"token"`
	Title    string   `bson:"title" json:"title"`
	Body     string   `bson:"body" json:"body"`
	SendAt   int64    `bson:"sendAt" json:"sendAt"`
	Reminder Reminder `bson:"reminder" json:"reminder"`
}

// ReminderTaskPayload is the asynq task body for a single push dispatch.
type ReminderTaskPayload struct {
	NoteID string `json:"noteId"`
	DueAt  int64  `json:"dueAt"`
}
