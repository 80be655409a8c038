package recurrence

import (
	"fmt"

	"notewise/models"
)

// Validate checks a rule's shape at save time. Next itself tolerates bad
// input, but the editor should reject it up front so the user can fix it.
func Validate(rule models.Reminder) error {
	switch rule.Kind {
	case models.RecurrenceSingle, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	default:
		return fmt.Errorf("unknown recurrence kind %q", rule.Kind)
	}

	if len(rule.Times) == 0 {
		return fmt.Errorf("reminder needs at least one time of day")
	}
	for _, s := range rule.Times {
		if _, ok := parseClock(s); !ok {
			return fmt.Errorf("invalid time of day %q, expected HH:MM", s)
		}
	}

	if rule.Kind == models.RecurrenceWeekly {
		if len(rule.DaysOfWeek) == 0 {
			return fmt.Errorf("weekly reminder needs at least one day of week")
		}
		for _, d := range rule.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("day of week %d out of range 0..6", d)
			}
		}
	}

	if rule.EndDate != nil && *rule.EndDate < rule.StartDate {
		return fmt.Errorf("end date precedes start date")
	}
	return nil
}
