package drag

import (
	"errors"
	"testing"
)

func TestDragLifecycle(t *testing.T) {
	c := New()

	if c.Dragging() {
		t.Fatal("new controller is dragging")
	}
	if got := c.TicketID(); got != "" {
		t.Fatalf("idle TicketID() = %q, want empty", got)
	}

	if err := c.Begin("t1", Position{X: 10, Y: 5}, nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !c.Dragging() {
		t.Fatal("not dragging after Begin")
	}
	if got := c.TicketID(); got != "t1" {
		t.Errorf("TicketID() = %q, want t1", got)
	}

	if err := c.Update(Position{X: 42, Y: 7}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	result, err := c.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if result.TicketID != "t1" {
		t.Errorf("result.TicketID = %q, want t1", result.TicketID)
	}
	if result.DeltaX() != 32 {
		t.Errorf("DeltaX() = %d, want 32", result.DeltaX())
	}
	if result.DeltaY() != 2 {
		t.Errorf("DeltaY() = %d, want 2", result.DeltaY())
	}
	if c.Dragging() {
		t.Error("still dragging after Commit")
	}
}

func TestMisuseErrors(t *testing.T) {
	c := New()

	if err := c.Update(Position{}); !errors.Is(err, ErrNoActiveDrag) {
		t.Errorf("idle Update() error = %v, want ErrNoActiveDrag", err)
	}
	if _, err := c.Commit(); !errors.Is(err, ErrNoActiveDrag) {
		t.Errorf("idle Commit() error = %v, want ErrNoActiveDrag", err)
	}
	if err := c.Cancel(); !errors.Is(err, ErrNoActiveDrag) {
		t.Errorf("idle Cancel() error = %v, want ErrNoActiveDrag", err)
	}

	if err := c.Begin("t1", Position{}, nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := c.Begin("t2", Position{}, nil); !errors.Is(err, ErrDragInProgress) {
		t.Errorf("double Begin() error = %v, want ErrDragInProgress", err)
	}
	if got := c.TicketID(); got != "t1" {
		t.Errorf("TicketID() after rejected Begin = %q, want t1", got)
	}
}

func TestCancelDiscards(t *testing.T) {
	c := New()
	if err := c.Begin("t1", Position{X: 1}, nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := c.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if c.Dragging() {
		t.Error("still dragging after Cancel")
	}
	// Fresh drags work after a cancel.
	if err := c.Begin("t2", Position{}, nil); err != nil {
		t.Errorf("Begin after Cancel: %v", err)
	}
}

func TestMoveSubscriber(t *testing.T) {
	c := New()
	var seen []Position
	if err := c.Begin("t1", Position{}, func(p Position) { seen = append(seen, p) }); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	c.Update(Position{X: 1})
	c.Update(Position{X: 2})
	if len(seen) != 2 || seen[1].X != 2 {
		t.Fatalf("subscriber saw %v, want two updates ending at X=2", seen)
	}

	if _, err := c.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// The subscriber must not outlive the drag it was registered for.
	if err := c.Begin("t2", Position{}, nil); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	c.Update(Position{X: 9})
	if len(seen) != 2 {
		t.Errorf("stale subscriber received updates from a later drag: %v", seen)
	}
}

func TestSubscriberClearedOnEveryExit(t *testing.T) {
	exits := []struct {
		name string
		exit func(c *Controller)
	}{
		{"commit", func(c *Controller) { c.Commit() }},
		{"cancel", func(c *Controller) { c.Cancel() }},
		{"abort", func(c *Controller) { c.Abort() }},
	}

	for _, tc := range exits {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			calls := 0
			if err := c.Begin("t1", Position{}, func(Position) { calls++ }); err != nil {
				t.Fatalf("Begin: %v", err)
			}
			tc.exit(c)

			if err := c.Begin("t2", Position{}, nil); err != nil {
				t.Fatalf("Begin after %s: %v", tc.name, err)
			}
			c.Update(Position{X: 1})
			if calls != 0 {
				t.Errorf("subscriber from previous drag fired after %s", tc.name)
			}
		})
	}
}

func TestAbortIdleIsNoop(t *testing.T) {
	c := New()
	c.Abort()
	if c.Dragging() {
		t.Error("Abort() on idle controller started a drag")
	}
}
