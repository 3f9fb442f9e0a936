package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/store"
)

// Registry owns the set of boards and the notion of the active board.
// Exactly one board is active in the UI at a time; the active board id
// is persisted so a relaunch restores the same selection a deep link
// would produce.
type Registry struct {
	remote   Remote
	snapshot *store.SnapshotStore
	tickets  *TicketStore
	log      *logrus.Logger

	mu     sync.RWMutex
	boards []model.Board
}

// NewRegistry creates a board registry. The ticket store is required:
// deleting a board purges its tickets from the local cache as a side
// effect visible to the caller. snapshot may be nil.
func NewRegistry(r Remote, snapshot *store.SnapshotStore, tickets *TicketStore, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		remote:   r,
		snapshot: snapshot,
		tickets:  tickets,
		log:      log,
	}
}

// Load fetches the board list from the remote store, keeping creation
// order as returned.
func (r *Registry) Load(ctx context.Context) ([]model.Board, error) {
	boards, err := r.remote.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading boards: %w", err)
	}

	r.mu.Lock()
	r.boards = append([]model.Board(nil), boards...)
	r.mu.Unlock()

	if r.snapshot != nil {
		if err := r.snapshot.ReplaceBoards(ctx, boards); err != nil {
			r.log.WithError(err).Warn("persisting board snapshot failed")
		}
	}

	return r.Boards(), nil
}

// LoadCached fills the registry from the local snapshot without touching
// the remote store.
func (r *Registry) LoadCached(ctx context.Context) ([]model.Board, error) {
	if r.snapshot == nil {
		return nil, nil
	}
	boards, err := r.snapshot.LoadBoards(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.boards = boards
	r.mu.Unlock()

	return r.Boards(), nil
}

// Boards returns the known boards in creation order.
func (r *Registry) Boards() []model.Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Board(nil), r.boards...)
}

// Get returns the board with the given id.
func (r *Registry) Get(id string) (model.Board, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.boards {
		if b.ID == id {
			return b, true
		}
	}
	return model.Board{}, false
}

// Create validates the name, creates the board remotely, and appends it
// to the local listing.
func (r *Registry) Create(ctx context.Context, name, description, color string) (*model.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Message: "must not be empty"}
	}

	board, err := r.remote.CreateBoard(ctx, remote.BoardCreate{
		Name:        name,
		Description: description,
		Color:       color,
	})
	if err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}

	r.mu.Lock()
	r.boards = append(r.boards, *board)
	r.mu.Unlock()

	r.persist(ctx)
	return board, nil
}

// Update applies a partial update to a board.
func (r *Registry) Update(ctx context.Context, id string, in remote.BoardUpdate) (*model.Board, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, &model.ValidationError{Field: "name", Message: "must not be empty"}
	}

	board, err := r.remote.UpdateBoard(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("updating board %s: %w", id, err)
	}

	r.mu.Lock()
	for i, b := range r.boards {
		if b.ID == id {
			r.boards[i] = *board
			break
		}
	}
	r.mu.Unlock()

	r.persist(ctx)
	return board, nil
}

// Delete removes a board. All locally cached tickets belonging to the
// board are purged; the remote store cascades on its side.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.remote.DeleteBoard(ctx, id); err != nil {
		return fmt.Errorf("deleting board %s: %w", id, err)
	}

	r.mu.Lock()
	for i, b := range r.boards {
		if b.ID == id {
			r.boards = append(r.boards[:i], r.boards[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if r.tickets != nil {
		r.tickets.PurgeBoard(ctx, id)
	}

	r.persist(ctx)
	return nil
}

// ResolveActive picks the active board: the requested id when it matches
// a known board, else the board flagged as default, else the first board
// in listing order, else nil for the empty state.
func (r *Registry) ResolveActive(requestedID string) *model.Board {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if requestedID != "" {
		for _, b := range r.boards {
			if b.ID == requestedID {
				board := b
				return &board
			}
		}
	}
	for _, b := range r.boards {
		if b.IsDefault {
			board := b
			return &board
		}
	}
	if len(r.boards) > 0 {
		board := r.boards[0]
		return &board
	}
	return nil
}

// SelectBoard records the active board id so the selection survives a
// relaunch.
func (r *Registry) SelectBoard(ctx context.Context, id string) {
	if r.snapshot == nil {
		return
	}
	if err := r.snapshot.SetActiveBoard(ctx, id); err != nil {
		r.log.WithError(err).WithField("board", id).
			Warn("persisting active board failed")
	}
}

// LastActiveBoard returns the persisted active board id, if any.
func (r *Registry) LastActiveBoard(ctx context.Context) string {
	if r.snapshot == nil {
		return ""
	}
	id, err := r.snapshot.ActiveBoard(ctx)
	if err != nil {
		r.log.WithError(err).Warn("reading active board failed")
		return ""
	}
	return id
}

func (r *Registry) persist(ctx context.Context) {
	if r.snapshot == nil {
		return
	}
	if err := r.snapshot.ReplaceBoards(ctx, r.Boards()); err != nil {
		r.log.WithError(err).Warn("persisting board snapshot failed")
	}
}
