package remote

import (
	"context"
	"fmt"

	"github.com/arenahub/trackboard/internal/model"
)

// ListBoards retrieves all boards in creation order.
func (c *Client) ListBoards(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	if err := c.get(ctx, "/boards", &boards); err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return boards, nil
}

// CreateBoard creates a new board and returns the server entity.
func (c *Client) CreateBoard(ctx context.Context, in BoardCreate) (*model.Board, error) {
	var board model.Board
	if err := c.post(ctx, "/boards", in, &board); err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}
	return &board, nil
}

// UpdateBoard applies a partial update to a board.
func (c *Client) UpdateBoard(ctx context.Context, id string, in BoardUpdate) (*model.Board, error) {
	var board model.Board
	if err := c.put(ctx, "/boards/"+id, in, &board); err != nil {
		return nil, fmt.Errorf("updating board %s: %w", id, err)
	}
	return &board, nil
}

// DeleteBoard removes a board. The remote store cascades deletion to the
// board's tickets; purging the local cache is the caller's job.
func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/boards/"+id); err != nil {
		return fmt.Errorf("deleting board %s: %w", id, err)
	}
	return nil
}
