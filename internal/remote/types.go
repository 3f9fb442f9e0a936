package remote

import (
	"time"

	"github.com/arenahub/trackboard/internal/model"
)

// BoardCreate is the write payload for POST /boards.
type BoardCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// BoardUpdate is the write payload for PUT /boards/:id. Nil fields are
// omitted and left unchanged server-side.
type BoardUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
}

// TicketCreate is the write payload for POST /tickets. Relations are sent
// by id (assignee_id, tag_ids); the response carries them expanded.
type TicketCreate struct {
	BoardID     string         `json:"board_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      model.Status   `json:"status"`
	Priority    model.Priority `json:"priority"`
	AssigneeID  string         `json:"assignee_id,omitempty"`
	TagIDs      []string       `json:"tag_ids,omitempty"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
}

// TicketPatch is the write payload for PUT /tickets/:id. Nil fields are
// omitted and left unchanged server-side. There is deliberately no board
// field: a ticket's board is immutable after creation.
type TicketPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	AssigneeID  *string         `json:"assignee_id,omitempty"`
	TagIDs      *[]string       `json:"tag_ids,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

// TagCreate is the write payload for POST /tags.
type TagCreate struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}
