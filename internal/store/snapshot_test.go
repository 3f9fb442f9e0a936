package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/tests/testutil"
)

func TestBoardSnapshotRoundTrip(t *testing.T) {
	s := testutil.NewSnapshot(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	boards := []model.Board{
		{ID: "b1", Name: "Roster Ops", Color: "#ff0000", IsDefault: true, CreatedAt: now, UpdatedAt: now},
		{ID: "b2", Name: "Events", CreatedAt: now, UpdatedAt: now},
	}

	if err := s.ReplaceBoards(ctx, boards); err != nil {
		t.Fatalf("ReplaceBoards: %v", err)
	}

	got, err := s.LoadBoards(ctx)
	if err != nil {
		t.Fatalf("LoadBoards: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d boards, want 2", len(got))
	}
	// Listing order must survive the round trip.
	if got[0].ID != "b1" || got[1].ID != "b2" {
		t.Errorf("order = %s,%s, want b1,b2", got[0].ID, got[1].ID)
	}
	if !got[0].IsDefault {
		t.Error("is_default flag lost in round trip")
	}
	if got[1].IsDefault {
		t.Error("is_default flag leaked to b2")
	}
}

func TestReplaceBoardTicketsIsPerBoard(t *testing.T) {
	s := testutil.NewSnapshot(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	mk := func(id, boardID string) model.Ticket {
		return model.Ticket{
			ID: id, BoardID: boardID, Title: id,
			Status: model.StatusTodo, Priority: model.PriorityMedium,
			CreatedAt: now, UpdatedAt: now,
		}
	}

	if err := s.ReplaceBoardTickets(ctx, "b1", []model.Ticket{mk("t1", "b1")}); err != nil {
		t.Fatalf("ReplaceBoardTickets(b1): %v", err)
	}
	if err := s.ReplaceBoardTickets(ctx, "b2", []model.Ticket{mk("t2", "b2")}); err != nil {
		t.Fatalf("ReplaceBoardTickets(b2): %v", err)
	}

	// Replacing b1 again must not touch b2's rows.
	if err := s.ReplaceBoardTickets(ctx, "b1", nil); err != nil {
		t.Fatalf("ReplaceBoardTickets(b1, empty): %v", err)
	}

	b1, err := s.LoadTickets(ctx, "b1")
	if err != nil {
		t.Fatalf("LoadTickets(b1): %v", err)
	}
	if len(b1) != 0 {
		t.Errorf("b1 tickets = %d, want 0", len(b1))
	}

	b2, err := s.LoadTickets(ctx, "b2")
	if err != nil {
		t.Fatalf("LoadTickets(b2): %v", err)
	}
	if len(b2) != 1 || b2[0].ID != "t2" {
		t.Errorf("b2 tickets = %+v, want [t2]", b2)
	}
}

func TestTicketRelationsRoundTrip(t *testing.T) {
	s := testutil.NewSnapshot(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	due := now.AddDate(0, 0, 7)
	ticket := model.Ticket{
		ID: "t1", BoardID: "b1", Title: "scout",
		Status: model.StatusInProgress, Priority: model.PriorityUrgent,
		Assignee:  &model.Assignee{ID: "u1", Name: "Riya"},
		Tags:      []model.Tag{{ID: "tag1", Name: "scrim", Color: "#00ff00"}},
		DueDate:   &due,
		CreatedAt: now, UpdatedAt: now,
	}

	if err := s.UpsertTicket(ctx, ticket); err != nil {
		t.Fatalf("UpsertTicket: %v", err)
	}

	got, err := s.LoadTickets(ctx, "b1")
	if err != nil {
		t.Fatalf("LoadTickets: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d tickets, want 1", len(got))
	}

	loaded := got[0]
	if loaded.Assignee == nil || loaded.Assignee.Name != "Riya" {
		t.Errorf("assignee = %+v, want Riya", loaded.Assignee)
	}
	if len(loaded.Tags) != 1 || loaded.Tags[0].Name != "scrim" {
		t.Errorf("tags = %+v, want [scrim]", loaded.Tags)
	}
	if loaded.DueDate == nil || !loaded.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", loaded.DueDate, due)
	}
	if loaded.Status != model.StatusInProgress || loaded.Priority != model.PriorityUrgent {
		t.Errorf("status/priority = %s/%s, want in_progress/urgent", loaded.Status, loaded.Priority)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := testutil.NewSnapshot(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	ticket := model.Ticket{
		ID: "t1", BoardID: "b1", Title: "before",
		Status: model.StatusTodo, Priority: model.PriorityLow,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.UpsertTicket(ctx, ticket); err != nil {
		t.Fatalf("UpsertTicket: %v", err)
	}

	ticket.Title = "after"
	ticket.Status = model.StatusDone
	if err := s.UpsertTicket(ctx, ticket); err != nil {
		t.Fatalf("UpsertTicket again: %v", err)
	}

	got, err := s.LoadTickets(ctx, "b1")
	if err != nil {
		t.Fatalf("LoadTickets: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d tickets, want 1 (replaced)", len(got))
	}
	if got[0].Title != "after" || got[0].Status != model.StatusDone {
		t.Errorf("ticket = %+v, want the replaced values", got[0])
	}
}

func TestDeleteBoardTickets(t *testing.T) {
	s := testutil.NewSnapshot(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []string{"t1", "t2"} {
		err := s.UpsertTicket(ctx, model.Ticket{
			ID: id, BoardID: "b1", Title: id,
			Status: model.StatusTodo, Priority: model.PriorityLow,
			CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("UpsertTicket(%s): %v", id, err)
		}
	}

	if err := s.DeleteBoardTickets(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBoardTickets: %v", err)
	}
	got, err := s.LoadTickets(ctx, "b1")
	if err != nil {
		t.Fatalf("LoadTickets: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("tickets after purge = %d, want 0", len(got))
	}
}

func TestTagSnapshot(t *testing.T) {
	s := testutil.NewSnapshot(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	tags := []model.Tag{
		{ID: "tag2", Name: "travel", Color: "#0000ff", CreatedAt: now},
		{ID: "tag1", Name: "scrim", Color: "#00ff00", CreatedAt: now},
	}
	if err := s.ReplaceTags(ctx, tags); err != nil {
		t.Fatalf("ReplaceTags: %v", err)
	}

	got, err := s.LoadTags(ctx)
	if err != nil {
		t.Fatalf("LoadTags: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d tags, want 2", len(got))
	}
	// LoadTags orders by name.
	if got[0].Name != "scrim" || got[1].Name != "travel" {
		t.Errorf("order = %s,%s, want scrim,travel", got[0].Name, got[1].Name)
	}
}

func TestActiveBoardMeta(t *testing.T) {
	s := testutil.NewSnapshot(t)
	ctx := context.Background()

	got, err := s.ActiveBoard(ctx)
	if err != nil {
		t.Fatalf("ActiveBoard: %v", err)
	}
	if got != "" {
		t.Errorf("initial active board = %q, want empty", got)
	}

	if err := s.SetActiveBoard(ctx, "b7"); err != nil {
		t.Fatalf("SetActiveBoard: %v", err)
	}
	got, err = s.ActiveBoard(ctx)
	if err != nil {
		t.Fatalf("ActiveBoard: %v", err)
	}
	if got != "b7" {
		t.Errorf("active board = %q, want b7", got)
	}

	// Overwrites, not appends.
	if err := s.SetActiveBoard(ctx, "b8"); err != nil {
		t.Fatalf("SetActiveBoard again: %v", err)
	}
	got, _ = s.ActiveBoard(ctx)
	if got != "b8" {
		t.Errorf("active board = %q, want b8", got)
	}
}
