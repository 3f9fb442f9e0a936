package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
)

// FakeRemote is an in-memory stand-in for the platform API. Individual
// operations can be made to fail by setting the matching error field.
type FakeRemote struct {
	mu sync.Mutex

	Boards  []model.Board
	Tickets []model.Ticket
	Tags    []model.Tag

	// Per-operation failure injection.
	FailCreateBoard  error
	FailUpdateBoard  error
	FailDeleteBoard  error
	FailListTickets  error
	FailCreateTicket error
	FailUpdateTicket error
	FailDeleteTicket error
	FailListTags     error
	FailCreateTag    error

	// Call counters for asserting on coalescing behavior.
	ListTagsCalls  int
	CreateTagCalls int

	nextID int
}

// NewFakeRemote creates an empty fake API.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{}
}

func (f *FakeRemote) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// ListBoards implements the board listing endpoint.
func (f *FakeRemote) ListBoards(ctx context.Context) ([]model.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Board(nil), f.Boards...), nil
}

// CreateBoard implements the board create endpoint.
func (f *FakeRemote) CreateBoard(ctx context.Context, in remote.BoardCreate) (*model.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateBoard != nil {
		return nil, f.FailCreateBoard
	}
	b := model.Board{
		ID:          f.newID("board"),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		CreatedAt:   time.Now().UTC(),
	}
	f.Boards = append(f.Boards, b)
	return &b, nil
}

// UpdateBoard implements the board update endpoint.
func (f *FakeRemote) UpdateBoard(ctx context.Context, id string, in remote.BoardUpdate) (*model.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailUpdateBoard != nil {
		return nil, f.FailUpdateBoard
	}
	for i := range f.Boards {
		if f.Boards[i].ID != id {
			continue
		}
		if in.Name != nil {
			f.Boards[i].Name = *in.Name
		}
		if in.Description != nil {
			f.Boards[i].Description = *in.Description
		}
		if in.Color != nil {
			f.Boards[i].Color = *in.Color
		}
		if in.IsDefault != nil && *in.IsDefault {
			for j := range f.Boards {
				f.Boards[j].IsDefault = false
			}
			f.Boards[i].IsDefault = true
		}
		b := f.Boards[i]
		return &b, nil
	}
	return nil, fmt.Errorf("board %s not found", id)
}

// DeleteBoard implements the board delete endpoint, cascading tickets.
func (f *FakeRemote) DeleteBoard(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDeleteBoard != nil {
		return f.FailDeleteBoard
	}
	for i := range f.Boards {
		if f.Boards[i].ID == id {
			f.Boards = append(f.Boards[:i], f.Boards[i+1:]...)
			break
		}
	}
	kept := f.Tickets[:0]
	for _, t := range f.Tickets {
		if t.BoardID != id {
			kept = append(kept, t)
		}
	}
	f.Tickets = kept
	return nil
}

// ListTickets implements the per-board ticket listing endpoint.
func (f *FakeRemote) ListTickets(ctx context.Context, boardID string) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailListTickets != nil {
		return nil, f.FailListTickets
	}
	var out []model.Ticket
	for _, t := range f.Tickets {
		if t.BoardID == boardID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// CreateTicket implements the ticket create endpoint.
func (f *FakeRemote) CreateTicket(ctx context.Context, in remote.TicketCreate) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateTicket != nil {
		return nil, f.FailCreateTicket
	}
	now := time.Now().UTC()
	t := model.Ticket{
		ID:          f.newID("ticket"),
		BoardID:     in.BoardID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, tagID := range in.TagIDs {
		for _, tag := range f.Tags {
			if tag.ID == tagID {
				t.Tags = append(t.Tags, tag)
			}
		}
	}
	f.Tickets = append(f.Tickets, t)
	out := t.Clone()
	return &out, nil
}

// UpdateTicket implements the ticket update endpoint.
func (f *FakeRemote) UpdateTicket(ctx context.Context, id string, in remote.TicketPatch) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailUpdateTicket != nil {
		return nil, f.FailUpdateTicket
	}
	for i := range f.Tickets {
		if f.Tickets[i].ID != id {
			continue
		}
		t := &f.Tickets[i]
		if in.Title != nil {
			t.Title = *in.Title
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.Status != nil {
			t.Status = *in.Status
		}
		if in.Priority != nil {
			t.Priority = *in.Priority
		}
		if in.DueDate != nil {
			d := *in.DueDate
			t.DueDate = &d
		}
		t.UpdatedAt = time.Now().UTC()
		out := t.Clone()
		return &out, nil
	}
	return nil, fmt.Errorf("ticket %s not found", id)
}

// DeleteTicket implements the ticket delete endpoint.
func (f *FakeRemote) DeleteTicket(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDeleteTicket != nil {
		return f.FailDeleteTicket
	}
	for i := range f.Tickets {
		if f.Tickets[i].ID == id {
			f.Tickets = append(f.Tickets[:i], f.Tickets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("ticket %s not found", id)
}

// ListTags implements the tag listing endpoint.
func (f *FakeRemote) ListTags(ctx context.Context) ([]model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListTagsCalls++
	if f.FailListTags != nil {
		return nil, f.FailListTags
	}
	return append([]model.Tag(nil), f.Tags...), nil
}

// CreateTag implements the tag create endpoint.
func (f *FakeRemote) CreateTag(ctx context.Context, in remote.TagCreate) (*model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateTagCalls++
	if f.FailCreateTag != nil {
		return nil, f.FailCreateTag
	}
	tag := model.Tag{
		ID:    f.newID("tag"),
		Name:  in.Name,
		Color: in.Color,
	}
	f.Tags = append(f.Tags, tag)
	return &tag, nil
}
