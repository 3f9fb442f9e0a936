// Package drag implements the pointer drag state machine shared by the
// column board and the timeline. The drag in progress is an explicit
// value owned by a Controller, not ambient global state; both consuming
// views read it through the controller by ticket id.
package drag

import "errors"

// Misuse of the state machine is a programming error in the calling
// view, not a recoverable runtime condition.
var (
	// ErrNoActiveDrag is returned when Update, Commit, or Cancel is
	// called while no drag is in progress.
	ErrNoActiveDrag = errors.New("drag: no active drag")

	// ErrDragInProgress is returned when Begin is called while a drag
	// is already in progress.
	ErrDragInProgress = errors.New("drag: drag already in progress")
)

// Position is a pointer location in cell coordinates.
type Position struct {
	X int
	Y int
}

// Result is the outcome of a committed drag: which ticket moved and how
// far the pointer travelled. The consuming view turns it into a status
// change (column board) or a due-date shift (timeline) and hands the
// mutation to the ticket store.
type Result struct {
	TicketID string
	Origin   Position
	Final    Position
}

// DeltaX returns the horizontal pointer travel of the drag.
func (r Result) DeltaX() int { return r.Final.X - r.Origin.X }

// DeltaY returns the vertical pointer travel of the drag.
func (r Result) DeltaY() int { return r.Final.Y - r.Origin.Y }

// MoveFunc observes pointer positions during a drag, for live preview
// rendering. It is registered on Begin and dropped on every exit path.
type MoveFunc func(Position)

// Controller is the drag state machine: Idle -> Dragging -> Idle via
// commit or cancel. It is owned by the UI event loop and is not safe for
// concurrent use.
type Controller struct {
	dragging bool
	ticketID string
	origin   Position
	current  Position
	onMove   MoveFunc
}

// New creates an idle controller.
func New() *Controller {
	return &Controller{}
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// TicketID returns the id of the ticket being dragged, or "" while idle.
func (c *Controller) TicketID() string {
	if !c.dragging {
		return ""
	}
	return c.ticketID
}

// Current returns the latest pointer position of the active drag.
func (c *Controller) Current() Position { return c.current }

// DeltaX returns the horizontal pointer travel of the active drag.
func (c *Controller) DeltaX() int { return c.current.X - c.origin.X }

// Begin starts a drag for a ticket at the given pointer position and
// subscribes onMove (which may be nil) to subsequent pointer updates for
// the duration of this drag only.
func (c *Controller) Begin(ticketID string, pos Position, onMove MoveFunc) error {
	if c.dragging {
		return ErrDragInProgress
	}
	c.dragging = true
	c.ticketID = ticketID
	c.origin = pos
	c.current = pos
	c.onMove = onMove
	return nil
}

// Update records the latest pointer position and notifies the move
// subscriber. Valid only while dragging.
func (c *Controller) Update(pos Position) error {
	if !c.dragging {
		return ErrNoActiveDrag
	}
	c.current = pos
	if c.onMove != nil {
		c.onMove(pos)
	}
	return nil
}

// Commit ends the drag, returning its result and transitioning back to
// idle. The move subscriber is dropped. Valid only while dragging.
func (c *Controller) Commit() (Result, error) {
	if !c.dragging {
		return Result{}, ErrNoActiveDrag
	}
	result := Result{
		TicketID: c.ticketID,
		Origin:   c.origin,
		Final:    c.current,
	}
	c.reset()
	return result, nil
}

// Cancel discards the drag without producing a result. No remote call is
// made on cancellation. Valid only while dragging.
func (c *Controller) Cancel() error {
	if !c.dragging {
		return ErrNoActiveDrag
	}
	c.reset()
	return nil
}

// Abort unconditionally returns the controller to idle. Views call it on
// unmount so a drag interrupted mid-gesture never leaves a subscriber
// attached. Aborting an idle controller is a no-op.
func (c *Controller) Abort() {
	c.reset()
}

func (c *Controller) reset() {
	c.dragging = false
	c.ticketID = ""
	c.origin = Position{}
	c.current = Position{}
	c.onMove = nil
}
