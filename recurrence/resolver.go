// Package recurrence computes the next fire instant of a note reminder.
// It is the single shared implementation used by both the client-side poller
// and the server-side dispatch job.
package recurrence

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"notewise/models"
)

// Horizon bounds the forward day-by-day search. A rule with no feasible
// occurrence within this many calendar days resolves to "exhausted" instead
// of searching indefinitely. This is a termination guarantee, not a tuning
// knob: callers rely on Next returning for any input.
const Horizon = 730

type clockTime struct {
	hour, minute int
}

// Next returns the earliest instant strictly after ref at which the rule
// should fire, or false when the rule is exhausted (a single rule whose slot
// has passed, an end date overtaken, or nothing feasible within Horizon days).
//
// Calendar arithmetic happens in ref's location. StartDate and EndDate are
// epoch milliseconds anchored to the client's local midnight, so the caller
// is expected to pass a ref carrying that same zone.
//
// Next is a pure query: it never mutates the rule and never returns an error.
// Malformed input (unparsable times, an empty day set on a weekly rule)
// degrades to exhaustion rather than panicking; shape validation belongs to
// the save path, see Validate.
func Next(rule models.Reminder, ref time.Time) (time.Time, bool) {
	times := parseTimes(rule.Times)
	if len(times) == 0 {
		return time.Time{}, false
	}

	loc := ref.Location()
	start := startOfDay(time.UnixMilli(rule.StartDate).In(loc))

	if rule.Kind == models.RecurrenceSingle {
		// The only candidate day is the start date. Once every time slot on
		// that day is at or before ref the rule never fires again.
		return firstAfter(start, times, rule, ref)
	}

	day := startOfDay(ref)
	if day.Before(start) {
		day = start
	}

	for i := 0; i < Horizon; i++ {
		if eligibleDay(rule, start, day) {
			if t, ok := firstAfter(day, times, rule, ref); ok {
				return t, true
			}
			// firstAfter reports false either because every time on this day
			// is already past, or because the first future time overshoots
			// the end date. The latter ends the search for good.
			if pastEnd(endOfDay(day), rule, ref) {
				return time.Time{}, false
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return time.Time{}, false
}

// eligibleDay reports whether day can host an occurrence under the rule's
// recurrence kind. start is the rule's start date at midnight.
func eligibleDay(rule models.Reminder, start, day time.Time) bool {
	switch rule.Kind {
	case models.RecurrenceDaily:
		return true
	case models.RecurrenceWeekly:
		wd := int(day.Weekday())
		for _, d := range rule.DaysOfWeek {
			if d == wd {
				return true
			}
		}
		return false
	case models.RecurrenceMonthly:
		// Anchored to the start date's day-of-month. Months too short for the
		// anchor clamp to their last day (an anchor of 31 fires on Apr 30)
		// instead of silently skipping the month.
		anchor := start.Day()
		if day.Day() == anchor {
			return true
		}
		last := daysInMonth(day)
		return anchor > last && day.Day() == last
	default:
		return false
	}
}

// firstAfter tries each time-of-day on day in ascending order and returns the
// first instant strictly after ref, rejecting it (and ending the rule) when
// it falls past the end date.
func firstAfter(day time.Time, times []clockTime, rule models.Reminder, ref time.Time) (time.Time, bool) {
	for _, ct := range times {
		cand := time.Date(day.Year(), day.Month(), day.Day(), ct.hour, ct.minute, 0, 0, day.Location())
		if !cand.After(ref) {
			continue
		}
		if pastEnd(cand, rule, ref) {
			return time.Time{}, false
		}
		return cand, true
	}
	return time.Time{}, false
}

// pastEnd reports whether t falls strictly after the rule's end date, using
// an end-of-day boundary: an occurrence any time on the end date itself is
// still allowed.
func pastEnd(t time.Time, rule models.Reminder, ref time.Time) bool {
	if rule.EndDate == nil {
		return false
	}
	endBoundary := startOfDay(time.UnixMilli(*rule.EndDate).In(ref.Location())).AddDate(0, 0, 1)
	return !t.Before(endBoundary)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Millisecond)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// parseTimes converts "HH:MM" entries to clock times sorted ascending.
// Unparsable or out-of-range entries are dropped.
func parseTimes(raw []string) []clockTime {
	times := make([]clockTime, 0, len(raw))
	for _, s := range raw {
		if ct, ok := parseClock(s); ok {
			times = append(times, ct)
		}
	}
	sort.Slice(times, func(i, j int) bool {
		return times[i].hour*60+times[i].minute < times[j].hour*60+times[j].minute
	})
	return times
}

func parseClock(s string) (clockTime, bool) {
	h, m, found := strings.Cut(s, ":")
	if !found {
		return clockTime{}, false
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return clockTime{}, false
	}
	return clockTime{hour: hour, minute: minute}, true
}
