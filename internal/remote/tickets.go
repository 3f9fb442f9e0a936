package remote

import (
	"context"
	"fmt"

	"github.com/arenahub/trackboard/internal/model"
)

// ListTickets retrieves all tickets belonging to a board. Assignee and
// tags come back expanded.
func (c *Client) ListTickets(ctx context.Context, boardID string) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := c.get(ctx, "/boards/"+boardID+"/tickets", &tickets); err != nil {
		return nil, fmt.Errorf("listing tickets for board %s: %w", boardID, err)
	}
	return tickets, nil
}

// CreateTicket creates a new ticket and returns the server entity with
// its assigned id.
func (c *Client) CreateTicket(ctx context.Context, in TicketCreate) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := c.post(ctx, "/tickets", in, &ticket); err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}
	return &ticket, nil
}

// UpdateTicket applies a partial update to a ticket.
func (c *Client) UpdateTicket(ctx context.Context, id string, in TicketPatch) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := c.put(ctx, "/tickets/"+id, in, &ticket); err != nil {
		return nil, fmt.Errorf("updating ticket %s: %w", id, err)
	}
	return &ticket, nil
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/tickets/"+id); err != nil {
		return fmt.Errorf("deleting ticket %s: %w", id, err)
	}
	return nil
}
