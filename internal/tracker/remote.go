// Package tracker holds the client-side state of the task/board
// subsystem: the board registry, the multi-board ticket cache with its
// optimistic mutation protocol, and tag name resolution. All ticket
// mutation funnels through this package; the views are read-only
// projections over it.
package tracker

import (
	"context"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
)

// Remote is the subset of the platform API the tracker consumes.
// *remote.Client implements it; tests substitute fakes.
type Remote interface {
	ListBoards(ctx context.Context) ([]model.Board, error)
	CreateBoard(ctx context.Context, in remote.BoardCreate) (*model.Board, error)
	UpdateBoard(ctx context.Context, id string, in remote.BoardUpdate) (*model.Board, error)
	DeleteBoard(ctx context.Context, id string) error

	ListTickets(ctx context.Context, boardID string) ([]model.Ticket, error)
	CreateTicket(ctx context.Context, in remote.TicketCreate) (*model.Ticket, error)
	UpdateTicket(ctx context.Context, id string, in remote.TicketPatch) (*model.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error

	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, in remote.TagCreate) (*model.Tag, error)
}
