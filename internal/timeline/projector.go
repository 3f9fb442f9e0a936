// Package timeline projects tickets onto a horizontal date axis and
// converts drag gestures back into whole-day due-date shifts. Everything
// here is a pure function over the ticket collection; nothing mutates it.
package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/arenahub/trackboard/internal/model"
)

// Mode selects the date window rendered by the timeline.
type Mode string

const (
	ModeMonth Mode = "month"
	ModeWeek  Mode = "week"
	ModeDay   Mode = "day"
)

// ParseMode maps a config string to a Mode, defaulting to month.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeWeek:
		return ModeWeek
	case ModeDay:
		return ModeDay
	}
	return ModeMonth
}

// syntheticDuration is the display length given to tickets without a due
// date: createdAt + 3 days. It is never written back.
const syntheticDuration = 3

// minWidthPercent keeps zero-duration tasks visible and clickable. It is
// a display-only clamp, never stored.
const minWidthPercent = 5.0

// Span is a ticket's placement on the axis, in percent of the window.
type Span struct {
	LeftPercent  float64
	WidthPercent float64
}

// WindowDates returns the days of the window containing anchor:
// every calendar day of the anchor's month, the 7 days of the anchor's
// week starting Sunday, or the anchor's day alone.
func WindowDates(anchor time.Time, mode Mode) []time.Time {
	switch mode {
	case ModeWeek:
		start := midnight(anchor).AddDate(0, 0, -int(anchor.Weekday()))
		days := make([]time.Time, 7)
		for i := range days {
			days[i] = start.AddDate(0, 0, i)
		}
		return days

	case ModeDay:
		return []time.Time{midnight(anchor)}

	default:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		next := first.AddDate(0, 1, 0)
		var days []time.Time
		for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}
		return days
	}
}

// EffectiveRange returns the dates a ticket occupies on the axis. A
// ticket with a due date collapses to that single day; without one it
// spans createdAt through createdAt + 3 days, a synthetic display-only
// end.
func EffectiveRange(t model.Ticket) (start, end time.Time) {
	if t.DueDate != nil {
		return *t.DueDate, *t.DueDate
	}
	return t.CreatedAt, t.CreatedAt.AddDate(0, 0, syntheticDuration)
}

// Project places a ticket within a window as left/width percentages of
// the axis. Vacuously empty windows are treated as a single day to avoid
// division by zero.
func Project(t model.Ticket, window []time.Time) Span {
	if len(window) == 0 {
		return Span{WidthPercent: minWidthPercent}
	}

	start, end := EffectiveRange(t)

	totalDays := DaysBetween(window[0], window[len(window)-1])
	if totalDays < 1 {
		totalDays = 1
	}

	startOffset := DaysBetween(window[0], start)
	if startOffset < 0 {
		startOffset = 0
	}
	duration := DaysBetween(start, end)

	span := Span{
		LeftPercent:  float64(startOffset) / float64(totalDays) * 100,
		WidthPercent: float64(duration) / float64(totalDays) * 100,
	}
	if span.WidthPercent < minWidthPercent {
		span.WidthPercent = minWidthPercent
	}
	return span
}

// DeltaDays converts the horizontal pixel travel of a drag into a
// whole-day shift, rounding to the nearest day: sub-day scheduling does
// not exist in the data model.
func DeltaDays(pixelDeltaX, timelineWidthPx, totalDays int) int {
	if timelineWidthPx <= 0 {
		return 0
	}
	return int(math.Round(float64(pixelDeltaX) / float64(timelineWidthPx) * float64(totalDays)))
}

// Reschedule shifts a due date by a whole number of days.
func Reschedule(due time.Time, deltaDays int) time.Time {
	return due.AddDate(0, 0, deltaDays)
}

// DaysBetween returns the number of calendar days from a to b, negative
// when b precedes a. Time-of-day is ignored.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// SortField selects the comparator for the timeline's task list.
type SortField string

const (
	SortTitle    SortField = "title"
	SortAssignee SortField = "assignee"
	SortDueDate  SortField = "due_date"
	SortPriority SortField = "priority"
)

// SortTickets orders tickets in place by the given field. The descending
// toggle flips the comparator's sign uniformly. Sorting is stable, so
// ties keep the order the fetch returned.
func SortTickets(tickets []model.Ticket, field SortField, desc bool) {
	sort.SliceStable(tickets, func(i, j int) bool {
		c := compare(tickets[i], tickets[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compare returns a negative, zero, or positive value ordering a before,
// equal to, or after b for the ascending direction of the field.
func compare(a, b model.Ticket, field SortField) int {
	switch field {
	case SortAssignee:
		// Unassigned tickets compare as the empty string.
		return compareStrings(a.AssigneeName(), b.AssigneeName())

	case SortDueDate:
		// Undated tickets sort as +infinity: always after dated ones.
		return compareInt64(dueKey(a), dueKey(b))

	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()

	default:
		return compareStrings(a.Title, b.Title)
	}
}

func dueKey(t model.Ticket) int64 {
	if t.DueDate == nil {
		return math.MaxInt64
	}
	return t.DueDate.Unix()
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
