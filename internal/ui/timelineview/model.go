// Package timelineview renders the date-axis projection of the active
// board's tickets and turns horizontal drags into due-date shifts.
package timelineview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arenahub/trackboard/internal/drag"
	"github.com/arenahub/trackboard/internal/keys"
	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/theme"
	"github.com/arenahub/trackboard/internal/timeline"
	"github.com/arenahub/trackboard/internal/tracker"
)

// mutationTimeout bounds the remote confirmation of a reschedule.
const mutationTimeout = 30 * time.Second

// TicketRescheduledMsg reports the outcome of a committed reschedule.
type TicketRescheduledMsg struct {
	Ticket *model.Ticket
	Err    error
}

// sortFields is the cycle order of the list comparator.
var sortFields = []timeline.SortField{
	timeline.SortDueDate,
	timeline.SortPriority,
	timeline.SortTitle,
	timeline.SortAssignee,
}

// labelWidth is the left gutter holding ticket titles; the axis starts
// after it.
const labelWidth = 24

// Model is the timeline (Gantt) view.
type Model struct {
	tickets *tracker.TicketStore
	drag    *drag.Controller
	keys    *keys.KeyMap

	boardID   string
	anchor    time.Time
	mode      timeline.Mode
	sortIndex int
	sortDesc  bool

	row int

	// keyDelta accumulates whole-day shifts during a keyboard drag;
	// pointer drags go through the pixel math instead.
	keyDelta int

	width  int
	height int
}

// New creates a timeline view sharing the app-wide drag controller.
func New(tickets *tracker.TicketStore, dc *drag.Controller, k *keys.KeyMap, mode timeline.Mode, width, height int) Model {
	return Model{
		tickets: tickets,
		drag:    dc,
		keys:    k,
		anchor:  time.Now(),
		mode:    mode,
		width:   width,
		height:  height,
	}
}

// SetBoard switches the view to another board, aborting any drag in
// progress.
func (m *Model) SetBoard(boardID string) {
	m.drag.Abort()
	m.boardID = boardID
	m.row = 0
	m.keyDelta = 0
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Unmount aborts any drag in progress; called when the app routes away
// from this view mid-gesture.
func (m *Model) Unmount() {
	m.drag.Abort()
}

// Window returns the current date window.
func (m Model) Window() []time.Time {
	return timeline.WindowDates(m.anchor, m.mode)
}

// Rows returns the ticket list in the current sort order. It is a pure
// projection over the cache.
func (m Model) Rows() []model.Ticket {
	tickets := m.tickets.Tickets(m.boardID)
	timeline.SortTickets(tickets, sortFields[m.sortIndex], m.sortDesc)
	return tickets
}

// axisWidth is the rendered width of the date axis in cells.
func (m Model) axisWidth() int {
	w := m.width - labelWidth - 2
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) totalDays() int {
	window := m.Window()
	days := timeline.DaysBetween(window[0], window[len(window)-1])
	if days < 1 {
		days = 1
	}
	return days
}

// Update handles messages for the timeline view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.drag.Dragging() {
			return m.handleDragKeys(msg)
		}
		return m.handleNormalKeys(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

// handleDragKeys drives a keyboard reschedule: left/right shift by one
// day, enter commits, esc cancels.
func (m Model) handleDragKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.keyDelta--
		return m, nil

	case key.Matches(msg, m.keys.Right):
		m.keyDelta++
		return m, nil

	case key.Matches(msg, m.keys.Drop):
		result, err := m.drag.Commit()
		if err != nil {
			return m, nil
		}
		delta := m.keyDelta
		m.keyDelta = 0
		return m, m.commitReschedule(result.TicketID, delta)

	case key.Matches(msg, m.keys.Cancel):
		m.drag.Cancel()
		m.keyDelta = 0
		return m, nil
	}
	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.Rows())-1 {
			m.row++
		}
		return m, nil

	case key.Matches(msg, m.keys.Grab):
		rows := m.Rows()
		if m.row < len(rows) {
			m.keyDelta = 0
			m.drag.Begin(rows[m.row].ID, drag.Position{}, nil)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleMode):
		switch m.mode {
		case timeline.ModeMonth:
			m.mode = timeline.ModeWeek
		case timeline.ModeWeek:
			m.mode = timeline.ModeDay
		default:
			m.mode = timeline.ModeMonth
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevWindow):
		m.anchor = m.shiftAnchor(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextWindow):
		m.anchor = m.shiftAnchor(1)
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortFields)
		return m, nil

	case key.Matches(msg, m.keys.ReverseSort):
		m.sortDesc = !m.sortDesc
		return m, nil
	}
	return m, nil
}

// handleMouse drives a pointer reschedule along the axis.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	pos := drag.Position{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if id, ok := m.ticketAt(msg.Y); ok && msg.X >= labelWidth {
			m.drag.Begin(id, pos, nil)
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.drag.Dragging() {
			m.drag.Update(pos)
		}
		return m, nil

	case tea.MouseActionRelease:
		if !m.drag.Dragging() {
			return m, nil
		}
		if msg.X < labelWidth {
			// Dropped back onto the label gutter: discard.
			m.drag.Cancel()
			return m, nil
		}
		result, err := m.drag.Commit()
		if err != nil {
			return m, nil
		}
		delta := timeline.DeltaDays(result.DeltaX(), m.axisWidth(), m.totalDays())
		return m, m.commitReschedule(result.TicketID, delta)
	}
	return m, nil
}

// commitReschedule persists a drop as a due-date shift. The shift moves
// the ticket's effective due date; tickets without one anchor on their
// synthetic start instead, so the first reschedule materializes a real
// due date.
func (m Model) commitReschedule(ticketID string, deltaDays int) tea.Cmd {
	if deltaDays == 0 {
		return nil
	}
	t, ok := m.tickets.Get(ticketID)
	if !ok {
		return nil
	}

	base := t.CreatedAt
	if t.DueDate != nil {
		base = *t.DueDate
	}
	due := timeline.Reschedule(base, deltaDays)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		updated, err := m.tickets.Update(ctx, ticketID, remote.TicketPatch{DueDate: &due})
		return TicketRescheduledMsg{Ticket: updated, Err: err}
	}
}

// ticketAt maps a terminal row to the ticket lane rendered there.
func (m Model) ticketAt(y int) (string, bool) {
	row := y - laneAreaTop
	rows := m.Rows()
	if row < 0 || row >= len(rows) {
		return "", false
	}
	return rows[row].ID, true
}

// laneAreaTop is the first lane row: the axis heading occupies the rows
// above it.
const laneAreaTop = 2

// shiftAnchor moves the window by one unit of the current mode.
func (m Model) shiftAnchor(direction int) time.Time {
	switch m.mode {
	case timeline.ModeWeek:
		return m.anchor.AddDate(0, 0, 7*direction)
	case timeline.ModeDay:
		return m.anchor.AddDate(0, 0, direction)
	default:
		return m.anchor.AddDate(0, direction, 0)
	}
}

// View renders the axis heading and one lane per ticket.
func (m Model) View() string {
	if m.boardID == "" {
		return theme.HelpStyle.Render("no board selected — press b to pick or create one")
	}

	window := m.Window()
	axis := m.axisWidth()

	var b strings.Builder
	b.WriteString(m.renderHeading(window))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(strings.Repeat("─", labelWidth+axis)))
	b.WriteString("\n")

	rows := m.Rows()
	maxRows := m.height - 3
	for i, t := range rows {
		if maxRows > 0 && i >= maxRows {
			break
		}
		b.WriteString(m.renderLane(t, i, window, axis))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHeading(window []time.Time) string {
	first := window[0]
	last := window[len(window)-1]
	label := fmt.Sprintf("%s — %s (%s)",
		first.Format("Jan 2"), last.Format("Jan 2 2006"), m.mode)
	sort := fmt.Sprintf("sort: %s %s", sortFields[m.sortIndex], sortArrow(m.sortDesc))
	pad := labelWidth + m.axisWidth() - len(label) - len(sort)
	if pad < 1 {
		pad = 1
	}
	return theme.HeaderStyle.Render(label) + strings.Repeat(" ", pad) + theme.HelpStyle.Render(sort)
}

// renderLane draws one ticket's bar positioned by its projected span.
// During a drag the bar previews the pending shift without committing.
func (m Model) renderLane(t model.Ticket, row int, window []time.Time, axis int) string {
	span := timeline.Project(t, window)

	shift := 0
	if m.drag.Dragging() && m.drag.TicketID() == t.ID {
		if m.keyDelta != 0 {
			shift = m.keyDelta * axis / (m.totalDays())
		} else {
			shift = m.drag.DeltaX()
		}
	}

	left := int(span.LeftPercent/100*float64(axis)) + shift
	width := int(span.WidthPercent / 100 * float64(axis))
	if width < 1 {
		width = 1
	}
	if left < 0 {
		left = 0
	}
	if left+width > axis {
		left = axis - width
		if left < 0 {
			left = 0
			width = axis
		}
	}

	label := truncate(t.Title, labelWidth-2)
	labelStyle := theme.CardStyle
	if row == m.row && !m.drag.Dragging() {
		labelStyle = theme.SelectedCardStyle
	}

	bar := strings.Repeat(" ", left) +
		barStyle(m, t).Render(strings.Repeat("█", width))

	gutter := labelStyle.Width(labelWidth).Render(label)
	return lipgloss.JoinHorizontal(lipgloss.Top, gutter, bar)
}

func barStyle(m Model, t model.Ticket) lipgloss.Style {
	if m.drag.Dragging() && m.drag.TicketID() == t.ID {
		return theme.DraggedCardStyle
	}
	return theme.PriorityStyle(t.Priority)
}

func sortArrow(desc bool) string {
	if desc {
		return "↓"
	}
	return "↑"
}

func truncate(s string, max int) string {
	if max < 1 || len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
