package model

import (
	"testing"
	"time"
)

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		p    Priority
		want int
	}{
		{PriorityUrgent, 4},
		{PriorityHigh, 3},
		{PriorityMedium, 2},
		{PriorityLow, 1},
		{Priority("asap"), 0},
	}
	for _, tc := range tests {
		if got := tc.p.Rank(); got != tc.want {
			t.Errorf("Rank(%q) = %d, want %d", tc.p, got, tc.want)
		}
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		ticket Ticket
		want   bool
	}{
		{"past due and open", Ticket{Status: StatusTodo, DueDate: &past}, true},
		{"past due but done", Ticket{Status: StatusDone, DueDate: &past}, false},
		{"due in the future", Ticket{Status: StatusTodo, DueDate: &future}, false},
		{"no due date", Ticket{Status: StatusTodo}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ticket.Overdue(now); got != tc.want {
				t.Errorf("Overdue() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	due := time.Now()
	original := Ticket{
		ID:       "t1",
		Assignee: &Assignee{ID: "u1", Name: "Riya"},
		Tags:     []Tag{{ID: "tag1", Name: "scrim"}},
		DueDate:  &due,
	}

	clone := original.Clone()
	clone.Assignee.Name = "changed"
	clone.Tags[0].Name = "changed"
	*clone.DueDate = due.Add(24 * time.Hour)

	if original.Assignee.Name != "Riya" {
		t.Error("clone shares the assignee pointer")
	}
	if original.Tags[0].Name != "scrim" {
		t.Error("clone shares the tags slice")
	}
	if !original.DueDate.Equal(due) {
		t.Error("clone shares the due date pointer")
	}
}

func TestValidationErrorChain(t *testing.T) {
	err := &ValidationError{Field: "title", Message: "must not be empty"}
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false for a ValidationError")
	}
	if IsValidationError(nil) {
		t.Error("IsValidationError(nil) = true")
	}
}
