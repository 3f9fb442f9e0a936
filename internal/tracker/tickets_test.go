package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/tracker"
	"github.com/arenahub/trackboard/tests/testutil"
)

func seedTicket(f *testutil.FakeRemote, id, boardID, title string, status model.Status, priority model.Priority, due *time.Time) {
	now := time.Now().UTC()
	f.Tickets = append(f.Tickets, model.Ticket{
		ID:        id,
		BoardID:   boardID,
		Title:     title,
		Status:    status,
		Priority:  priority,
		DueDate:   due,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func TestLoadIsPerBoard(t *testing.T) {
	fake := testutil.NewFakeRemote()
	seedTicket(fake, "t1", "b1", "alpha", model.StatusTodo, model.PriorityMedium, nil)
	seedTicket(fake, "t2", "b2", "beta", model.StatusTodo, model.PriorityMedium, nil)

	s := tracker.NewTicketStore(fake, nil, nil)
	ctx := context.Background()

	if _, err := s.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load(b1): %v", err)
	}
	if _, err := s.Load(ctx, "b2"); err != nil {
		t.Fatalf("Load(b2): %v", err)
	}

	// Reloading b1 must not disturb b2's cache entries.
	fake.Tickets = fake.Tickets[:1]
	if _, err := s.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load(b1) again: %v", err)
	}

	if got := len(s.Tickets("b2")); got != 1 {
		t.Errorf("board b2 cache size = %d, want 1", got)
	}
}

func TestCreateValidation(t *testing.T) {
	s := tracker.NewTicketStore(testutil.NewFakeRemote(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft tracker.TicketDraft
		field string
	}{
		{"empty title", tracker.TicketDraft{BoardID: "b1", Title: "   "}, "title"},
		{"missing board", tracker.TicketDraft{Title: "ok"}, "board"},
		{"bad status", tracker.TicketDraft{BoardID: "b1", Title: "ok", Status: "archived"}, "status"},
		{"bad priority", tracker.TicketDraft{BoardID: "b1", Title: "ok", Priority: "asap"}, "priority"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, tc.draft)
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestCreateDefaultsAndConfirm(t *testing.T) {
	fake := testutil.NewFakeRemote()
	s := tracker.NewTicketStore(fake, nil, nil)

	created, err := s.Create(context.Background(), tracker.TicketDraft{
		BoardID: "b1",
		Title:   "  scout matchups  ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "scout matchups" {
		t.Errorf("title = %q, want trimmed", created.Title)
	}
	if created.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo default", created.Status)
	}
	if created.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium default", created.Priority)
	}

	// The cache must hold the confirmed entity, not the placeholder.
	cached := s.Tickets("b1")
	if len(cached) != 1 || cached[0].ID != created.ID {
		t.Errorf("cache = %+v, want the confirmed ticket", cached)
	}
}

func TestCreateFailureRemovesPlaceholder(t *testing.T) {
	fake := testutil.NewFakeRemote()
	fake.FailCreateTicket = errors.New("boom")
	s := tracker.NewTicketStore(fake, nil, nil)

	_, err := s.Create(context.Background(), tracker.TicketDraft{BoardID: "b1", Title: "x"})
	if err == nil {
		t.Fatal("Create() succeeded, want error")
	}
	if got := len(s.Tickets("b1")); got != 0 {
		t.Errorf("cache size after failed create = %d, want 0", got)
	}
}

func TestUpdateRollsBackOnFailure(t *testing.T) {
	fake := testutil.NewFakeRemote()
	seedTicket(fake, "t1", "b1", "alpha", model.StatusTodo, model.PriorityMedium, nil)
	s := tracker.NewTicketStore(fake, nil, nil)
	ctx := context.Background()

	if _, err := s.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fake.FailUpdateTicket = errors.New("502")
	status := model.StatusDone
	_, err := s.Update(ctx, "t1", remote.TicketPatch{Status: &status})
	if err == nil {
		t.Fatal("Update() succeeded, want error")
	}

	got, ok := s.Get("t1")
	if !ok {
		t.Fatal("ticket missing from cache after rollback")
	}
	if got.Status != model.StatusTodo {
		t.Errorf("status after rollback = %q, want todo", got.Status)
	}
}

func TestUpdateConfirms(t *testing.T) {
	fake := testutil.NewFakeRemote()
	seedTicket(fake, "t1", "b1", "alpha", model.StatusTodo, model.PriorityMedium, nil)
	s := tracker.NewTicketStore(fake, nil, nil)
	ctx := context.Background()

	if _, err := s.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	status := model.StatusInProgress
	updated, err := s.Update(ctx, "t1", remote.TicketPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}

	got, _ := s.Get("t1")
	if got.Status != model.StatusInProgress {
		t.Errorf("cached status = %q, want in_progress", got.Status)
	}
}

func TestDeleteRestoresOnFailure(t *testing.T) {
	fake := testutil.NewFakeRemote()
	seedTicket(fake, "t1", "b1", "alpha", model.StatusTodo, model.PriorityMedium, nil)
	s := tracker.NewTicketStore(fake, nil, nil)
	ctx := context.Background()

	if _, err := s.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fake.FailDeleteTicket = errors.New("timeout")
	if err := s.Delete(ctx, "t1"); err == nil {
		t.Fatal("Delete() succeeded, want error")
	}
	if _, ok := s.Get("t1"); !ok {
		t.Error("ticket missing from cache; failed delete must restore it")
	}

	fake.FailDeleteTicket = nil
	if err := s.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get("t1"); ok {
		t.Error("ticket still cached after successful delete")
	}
}

func TestFilter(t *testing.T) {
	fake := testutil.NewFakeRemote()
	seedTicket(fake, "t1", "b1", "Review VODs", model.StatusTodo, model.PriorityHigh, nil)
	seedTicket(fake, "t2", "b1", "book travel", model.StatusTodo, model.PriorityLow, nil)
	seedTicket(fake, "t3", "b1", "scrim block", model.StatusDone, model.PriorityHigh, nil)
	s := tracker.NewTicketStore(fake, nil, nil)

	if _, err := s.Load(context.Background(), "b1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	t.Run("query matches title case-insensitively", func(t *testing.T) {
		got := s.Filter("b1", "vods", tracker.PriorityAll)
		if len(got) != 1 || got[0].ID != "t1" {
			t.Errorf("Filter(vods) = %+v, want [t1]", got)
		}
	})

	t.Run("priority selector", func(t *testing.T) {
		got := s.Filter("b1", "", "high")
		if len(got) != 2 {
			t.Errorf("Filter(high) returned %d tickets, want 2", len(got))
		}
	})

	t.Run("both combined", func(t *testing.T) {
		got := s.Filter("b1", "scrim", "high")
		if len(got) != 1 || got[0].ID != "t3" {
			t.Errorf("Filter(scrim, high) = %+v, want [t3]", got)
		}
	})

	t.Run("empty query matches all", func(t *testing.T) {
		if got := s.Filter("b1", "", tracker.PriorityAll); len(got) != 3 {
			t.Errorf("unfiltered size = %d, want 3", len(got))
		}
	})
}

func TestGroupByStatusOrder(t *testing.T) {
	tickets := []model.Ticket{
		{ID: "t1", Status: model.StatusDone},
		{ID: "t2", Status: model.StatusTodo},
		{ID: "t3", Status: model.StatusInProgress},
	}

	columns := tracker.GroupByStatus(tickets)
	if len(columns) != 3 {
		t.Fatalf("column count = %d, want 3", len(columns))
	}

	wantOrder := []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusDone}
	for i, want := range wantOrder {
		if columns[i].Status != want {
			t.Errorf("column %d = %q, want %q", i, columns[i].Status, want)
		}
		if len(columns[i].Tickets) != 1 {
			t.Errorf("column %q size = %d, want 1", want, len(columns[i].Tickets))
		}
	}
}

func TestStats(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	fake := testutil.NewFakeRemote()
	seedTicket(fake, "t1", "b1", "a", model.StatusDone, model.PriorityLow, &past)
	seedTicket(fake, "t2", "b1", "b", model.StatusInProgress, model.PriorityLow, &past)
	seedTicket(fake, "t3", "b1", "c", model.StatusTodo, model.PriorityLow, nil)
	s := tracker.NewTicketStore(fake, nil, nil)

	if _, err := s.Load(context.Background(), "b1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	stats := s.Stats("b1")
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Completed != 1 {
		t.Errorf("Completed = %d, want 1", stats.Completed)
	}
	if stats.InProgress != 1 {
		t.Errorf("InProgress = %d, want 1", stats.InProgress)
	}
	// A done ticket past its due date does not count as overdue.
	if stats.Overdue != 1 {
		t.Errorf("Overdue = %d, want 1", stats.Overdue)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	fake := testutil.NewFakeRemote()
	seedTicket(fake, "t1", "b1", "alpha", model.StatusTodo, model.PriorityMedium, nil)
	snap := testutil.NewSnapshot(t)
	s := tracker.NewTicketStore(fake, snap, nil)
	ctx := context.Background()

	if _, err := s.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// A fresh store over the same snapshot sees the persisted tickets.
	s2 := tracker.NewTicketStore(fake, snap, nil)
	cached, err := s2.LoadCached(ctx, "b1")
	if err != nil {
		t.Fatalf("LoadCached: %v", err)
	}
	if len(cached) != 1 || cached[0].ID != "t1" {
		t.Errorf("cached = %+v, want [t1]", cached)
	}
}
