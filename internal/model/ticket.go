package model

import "time"

// Status is the kanban column a ticket currently sits in. Transitions are
// unconstrained: any status is reachable from any other.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists all statuses in column display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is the urgency level of a ticket.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists all priorities from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank returns the numeric ordering of the priority (urgent=4 ... low=1).
// Unknown priorities rank 0 so they sort below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Assignee is the user a ticket is assigned to, expanded by the remote
// store on reads.
type Assignee struct {
	ID     string `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Avatar string `json:"avatar,omitempty" db:"avatar"`
}

// Ticket is a unit of work on a board.
//
// BoardID is immutable after creation and always references an existing
// board. Tags are unique by name within a ticket.
type Ticket struct {
	ID          string     `json:"id" db:"id"`
	BoardID     string     `json:"board_id" db:"board_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	Priority    Priority   `json:"priority" db:"priority"`
	Assignee    *Assignee  `json:"assignee,omitempty" db:"-"`
	Tags        []Tag      `json:"tags,omitempty" db:"-"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// AssigneeName returns the assignee's display name, or the empty string
// when the ticket is unassigned.
func (t Ticket) AssigneeName() string {
	if t.Assignee == nil {
		return ""
	}
	return t.Assignee.Name
}

// Overdue reports whether the ticket's due date is in the past and the
// ticket is not done. Tickets without a due date are never overdue.
func (t Ticket) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(now)
}

// TagNames returns the ticket's tag names in stored order.
func (t Ticket) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// Clone returns a deep copy of the ticket. The ticket store hands out
// clones so callers can never mutate cache entries in place.
func (t Ticket) Clone() Ticket {
	c := t
	if t.Assignee != nil {
		a := *t.Assignee
		c.Assignee = &a
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Tags != nil {
		c.Tags = make([]Tag, len(t.Tags))
		copy(c.Tags, t.Tags)
	}
	return c
}
