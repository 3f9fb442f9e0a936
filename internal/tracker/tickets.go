package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/store"
)

// PriorityAll is the filter value matching every priority.
const PriorityAll = "all"

// TicketDraft holds the fields needed to create a ticket.
type TicketDraft struct {
	BoardID     string
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	AssigneeID  string
	TagIDs      []string
	DueDate     *time.Time
}

// Column is one status bucket of the column view.
type Column struct {
	Status  model.Status
	Tickets []model.Ticket
}

// Stats are the derived counters shown in the board header. They are
// recomputed from the cache on every call, never stored.
type Stats struct {
	Total      int
	Completed  int
	InProgress int
	Overdue    int
}

// TicketStore caches tickets per board and applies mutations
// optimistically: the cache changes before the remote call resolves, and
// is rolled back to the pre-mutation snapshot if the call fails.
//
// The cache is multi-board: loading one board's tickets never disturbs
// entries cached for other boards. There is no revision check against
// the remote store; the last write to the cache wins.
type TicketStore struct {
	remote   Remote
	snapshot *store.SnapshotStore
	log      *logrus.Logger

	mu      sync.RWMutex
	byBoard map[string][]model.Ticket
}

// NewTicketStore creates a ticket store. snapshot may be nil, in which
// case no local persistence happens.
func NewTicketStore(r Remote, snapshot *store.SnapshotStore, log *logrus.Logger) *TicketStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TicketStore{
		remote:   r,
		snapshot: snapshot,
		log:      log,
		byBoard:  make(map[string][]model.Ticket),
	}
}

// Load fetches a board's tickets from the remote store, replacing the
// cache entries for that board only.
func (s *TicketStore) Load(ctx context.Context, boardID string) ([]model.Ticket, error) {
	tickets, err := s.remote.ListTickets(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("loading tickets for board %s: %w", boardID, err)
	}

	s.mu.Lock()
	s.byBoard[boardID] = cloneTickets(tickets)
	s.mu.Unlock()

	if s.snapshot != nil {
		if err := s.snapshot.ReplaceBoardTickets(ctx, boardID, tickets); err != nil {
			s.log.WithError(err).WithField("board", boardID).
				Warn("persisting ticket snapshot failed")
		}
	}

	return cloneTickets(tickets), nil
}

// LoadCached fills the cache for a board from the local snapshot without
// touching the remote store. Used at startup so the UI has something to
// render before the first fetch completes.
func (s *TicketStore) LoadCached(ctx context.Context, boardID string) ([]model.Ticket, error) {
	if s.snapshot == nil {
		return nil, nil
	}
	tickets, err := s.snapshot.LoadTickets(ctx, boardID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.byBoard[boardID] = cloneTickets(tickets)
	s.mu.Unlock()

	return tickets, nil
}

// Tickets returns a copy of the cached tickets for a board.
func (s *TicketStore) Tickets(boardID string) []model.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTickets(s.byBoard[boardID])
}

// Get returns the cached ticket with the given id, searching all boards.
func (s *TicketStore) Get(id string) (model.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tickets := range s.byBoard {
		for _, t := range tickets {
			if t.ID == id {
				return t.Clone(), true
			}
		}
	}
	return model.Ticket{}, false
}

// Create validates the draft, inserts a placeholder ticket into the
// cache, and confirms against the remote store. On success the
// placeholder is replaced by the server entity; on failure it is removed
// and the error returned.
func (s *TicketStore) Create(ctx context.Context, draft TicketDraft) (*model.Ticket, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &model.ValidationError{Field: "title", Message: "must not be empty"}
	}
	if draft.BoardID == "" {
		return nil, &model.ValidationError{Field: "board", Message: "must reference a board"}
	}
	if draft.Status == "" {
		draft.Status = model.StatusTodo
	}
	if !draft.Status.Valid() {
		return nil, &model.ValidationError{Field: "status", Message: "unknown status"}
	}
	if draft.Priority == "" {
		draft.Priority = model.PriorityMedium
	}
	if !draft.Priority.Valid() {
		return nil, &model.ValidationError{Field: "priority", Message: "unknown priority"}
	}

	now := time.Now().UTC()
	placeholder := model.Ticket{
		ID:          uuid.New().String(),
		BoardID:     draft.BoardID,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		DueDate:     draft.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.byBoard[draft.BoardID] = append(s.byBoard[draft.BoardID], placeholder.Clone())
	s.mu.Unlock()

	created, err := s.remote.CreateTicket(ctx, remote.TicketCreate{
		BoardID:     placeholder.BoardID,
		Title:       placeholder.Title,
		Description: placeholder.Description,
		Status:      placeholder.Status,
		Priority:    placeholder.Priority,
		AssigneeID:  draft.AssigneeID,
		TagIDs:      draft.TagIDs,
		DueDate:     draft.DueDate,
	})
	if err != nil {
		s.removeLocal(placeholder.ID)
		s.log.WithError(err).WithField("board", draft.BoardID).
			Error("ticket create failed, placeholder removed")
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	s.replaceLocal(placeholder.ID, *created)
	s.persistUpsert(ctx, *created)
	return created, nil
}

// Update applies a patch optimistically and confirms against the remote
// store. On failure the pre-mutation snapshot is restored. A ticket's
// board assignment cannot change: TicketPatch carries no board field.
func (s *TicketStore) Update(ctx context.Context, id string, patch remote.TicketPatch) (*model.Ticket, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, &model.ValidationError{Field: "status", Message: "unknown status"}
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, &model.ValidationError{Field: "priority", Message: "unknown priority"}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &model.ValidationError{Field: "title", Message: "must not be empty"}
	}

	before, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("ticket %s not in cache", id)
	}

	optimistic := applyPatch(before, patch)
	s.replaceLocal(id, optimistic)

	updated, err := s.remote.UpdateTicket(ctx, id, patch)
	if err != nil {
		// Compensating action: restore the pre-mutation snapshot.
		s.replaceLocal(id, before)
		s.log.WithError(err).WithField("ticket", id).
			Error("ticket update failed, optimistic change rolled back")
		return nil, fmt.Errorf("updating ticket %s: %w", id, err)
	}

	s.replaceLocal(id, *updated)
	s.persistUpsert(ctx, *updated)
	out := updated.Clone()
	return &out, nil
}

// Delete removes a ticket optimistically and confirms against the remote
// store. On failure the ticket is restored to the cache.
func (s *TicketStore) Delete(ctx context.Context, id string) error {
	before, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("ticket %s not in cache", id)
	}

	s.removeLocal(id)

	if err := s.remote.DeleteTicket(ctx, id); err != nil {
		s.mu.Lock()
		s.byBoard[before.BoardID] = append(s.byBoard[before.BoardID], before)
		s.mu.Unlock()
		s.log.WithError(err).WithField("ticket", id).
			Error("ticket delete failed, entry restored")
		return fmt.Errorf("deleting ticket %s: %w", id, err)
	}

	if s.snapshot != nil {
		if err := s.snapshot.DeleteTicket(ctx, id); err != nil {
			s.log.WithError(err).WithField("ticket", id).
				Warn("removing ticket from snapshot failed")
		}
	}
	return nil
}

// PurgeBoard drops all cached tickets for a board. Called when a board
// is deleted; the remote store cascades on its side.
func (s *TicketStore) PurgeBoard(ctx context.Context, boardID string) {
	s.mu.Lock()
	delete(s.byBoard, boardID)
	s.mu.Unlock()

	if s.snapshot != nil {
		if err := s.snapshot.DeleteBoardTickets(ctx, boardID); err != nil {
			s.log.WithError(err).WithField("board", boardID).
				Warn("purging board tickets from snapshot failed")
		}
	}
}

// Filter returns the cached tickets of a board matching a search query
// and a priority selector. The query matches title or description
// case-insensitively; the empty query matches everything. priority is
// either PriorityAll or an exact priority value. Filtering never mutates
// the cache.
func (s *TicketStore) Filter(boardID, query, priority string) []model.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))

	var out []model.Ticket
	for _, t := range s.byBoard[boardID] {
		if priority != "" && priority != PriorityAll && string(t.Priority) != priority {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// GroupByStatus partitions tickets into the three status columns, in
// todo, in_progress, done order. It is a pure projection.
func GroupByStatus(tickets []model.Ticket) []Column {
	columns := make([]Column, len(model.Statuses))
	for i, status := range model.Statuses {
		columns[i].Status = status
	}
	for _, t := range tickets {
		for i := range columns {
			if columns[i].Status == t.Status {
				columns[i].Tickets = append(columns[i].Tickets, t)
				break
			}
		}
	}
	return columns
}

// Stats recomputes the derived counters for a board from the cache.
func (s *TicketStore) Stats(boardID string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var stats Stats
	for _, t := range s.byBoard[boardID] {
		stats.Total++
		switch t.Status {
		case model.StatusDone:
			stats.Completed++
		case model.StatusInProgress:
			stats.InProgress++
		}
		if t.Overdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// replaceLocal swaps the cache entry with the given id for the provided
// ticket, keyed by the ticket's own board.
func (s *TicketStore) replaceLocal(id string, ticket model.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := s.byBoard[ticket.BoardID]
	for i, t := range tickets {
		if t.ID == id {
			tickets[i] = ticket.Clone()
			return
		}
	}
	s.byBoard[ticket.BoardID] = append(tickets, ticket.Clone())
}

// removeLocal drops the cache entry with the given id from whichever
// board holds it.
func (s *TicketStore) removeLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for boardID, tickets := range s.byBoard {
		for i, t := range tickets {
			if t.ID == id {
				s.byBoard[boardID] = append(tickets[:i], tickets[i+1:]...)
				return
			}
		}
	}
}

// persistUpsert mirrors a confirmed ticket into the snapshot store,
// logging rather than failing when persistence is unavailable.
func (s *TicketStore) persistUpsert(ctx context.Context, t model.Ticket) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.UpsertTicket(ctx, t); err != nil {
		s.log.WithError(err).WithField("ticket", t.ID).
			Warn("persisting ticket snapshot failed")
	}
}

// applyPatch returns a copy of t with the patch's set fields applied.
// Assignee and tag changes are carried by id only; their expanded forms
// arrive with the server's reply, so the optimistic copy keeps the
// previous expansions in the meantime.
func applyPatch(t model.Ticket, patch remote.TicketPatch) model.Ticket {
	out := t.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Status != nil {
		out.Status = *patch.Status
	}
	if patch.Priority != nil {
		out.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		d := *patch.DueDate
		out.DueDate = &d
	}
	out.UpdatedAt = time.Now().UTC()
	return out
}

func cloneTickets(tickets []model.Ticket) []model.Ticket {
	if tickets == nil {
		return nil
	}
	out := make([]model.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = t.Clone()
	}
	return out
}
