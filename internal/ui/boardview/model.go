// Package boardview renders the three-column kanban presentation of the
// active board and turns drag gestures into status changes.
package boardview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arenahub/trackboard/internal/drag"
	"github.com/arenahub/trackboard/internal/keys"
	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/theme"
	"github.com/arenahub/trackboard/internal/tracker"
)

// mutationTimeout bounds the remote confirmation of a drag commit.
const mutationTimeout = 30 * time.Second

// TicketUpdatedMsg reports the outcome of a committed mutation. On
// failure the store has already rolled the optimistic change back; the
// app surfaces Err as a transient notice.
type TicketUpdatedMsg struct {
	Ticket *model.Ticket
	Err    error
}

// TicketDeletedMsg reports the outcome of a ticket deletion.
type TicketDeletedMsg struct {
	TicketID string
	Err      error
}

// EditTicketMsg asks the app to open the edit form for a ticket.
type EditTicketMsg struct {
	Ticket model.Ticket
}

// NewTicketMsg asks the app to open the create form.
type NewTicketMsg struct{}

// priorityFilters is the cycle order of the priority selector.
var priorityFilters = []string{
	tracker.PriorityAll,
	string(model.PriorityUrgent),
	string(model.PriorityHigh),
	string(model.PriorityMedium),
	string(model.PriorityLow),
}

// Model is the column board view.
type Model struct {
	tickets *tracker.TicketStore
	drag    *drag.Controller
	keys    *keys.KeyMap

	boardID       string
	query         string
	priorityIndex int

	// Selection: column index into model.Statuses plus row within it.
	col int
	row int

	searchMode  bool
	searchInput textinput.Model

	width  int
	height int
}

// New creates a board view sharing the app-wide drag controller.
func New(tickets *tracker.TicketStore, dc *drag.Controller, k *keys.KeyMap, width, height int) Model {
	si := textinput.New()
	si.Placeholder = "search tickets..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		tickets:     tickets,
		drag:        dc,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetBoard switches the view to another board and resets filters and
// selection. An in-progress drag is aborted so no subscriber outlives
// the board it was dragging on.
func (m *Model) SetBoard(boardID string) {
	m.drag.Abort()
	m.boardID = boardID
	m.query = ""
	m.priorityIndex = 0
	m.col = 0
	m.row = 0
	m.searchMode = false
	m.searchInput.Reset()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = width - 4
}

// Unmount aborts any drag in progress; called when the app routes away
// from this view mid-gesture.
func (m *Model) Unmount() {
	m.drag.Abort()
}

// Columns returns the current filtered, grouped projection. It reads
// the cache and never mutates it.
func (m Model) Columns() []tracker.Column {
	filtered := m.tickets.Filter(m.boardID, m.query, m.priorityFilter())
	return tracker.GroupByStatus(filtered)
}

func (m Model) priorityFilter() string {
	return priorityFilters[m.priorityIndex]
}

// Update handles messages for the board view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		if m.drag.Dragging() {
			return m.handleDragKeys(msg)
		}
		return m.handleNormalKeys(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

// handleSearchKeys processes key input while the search field is open.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		m.clampSelection()
		return m, nil
	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleDragKeys drives a keyboard-initiated drag: left/right move the
// preview column, enter drops, esc cancels.
func (m Model) handleDragKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		pos := m.drag.Current()
		if pos.X > 0 {
			pos.X--
			m.drag.Update(pos)
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		pos := m.drag.Current()
		if pos.X < len(model.Statuses)-1 {
			pos.X++
			m.drag.Update(pos)
		}
		return m, nil

	case key.Matches(msg, m.keys.Drop):
		result, err := m.drag.Commit()
		if err != nil {
			return m, nil
		}
		return m, m.commitMove(result.TicketID, model.Statuses[clampColumn(result.Final.X)])

	case key.Matches(msg, m.keys.Cancel):
		m.drag.Cancel()
		return m, nil
	}
	return m, nil
}

// handleNormalKeys processes key input while idle.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
			m.clampSelection()
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.col < len(model.Statuses)-1 {
			m.col++
			m.clampSelection()
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.CyclePriority):
		m.priorityIndex = (m.priorityIndex + 1) % len(priorityFilters)
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.Grab):
		if t, ok := m.selectedTicket(); ok {
			// Keyboard drags encode the column index as the pointer X.
			m.drag.Begin(t.ID, drag.Position{X: m.col}, nil)
		}
		return m, nil

	case key.Matches(msg, m.keys.NewTicket):
		return m, func() tea.Msg { return NewTicketMsg{} }

	case key.Matches(msg, m.keys.EditTicket):
		if t, ok := m.selectedTicket(); ok {
			ticket := t
			return m, func() tea.Msg { return EditTicketMsg{Ticket: ticket} }
		}
		return m, nil

	case key.Matches(msg, m.keys.DeleteTicket):
		if t, ok := m.selectedTicket(); ok {
			return m, m.deleteTicket(t.ID)
		}
		return m, nil
	}
	return m, nil
}

// handleMouse drives a pointer drag across the columns.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	pos := drag.Position{X: m.columnAt(msg.X), Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if id, ok := m.ticketAt(msg.X, msg.Y); ok {
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
		if pos.X < 0 {
			// Dropped outside any column: discard, no remote call.
			m.drag.Cancel()
			return m, nil
		}
		result, err := m.drag.Commit()
		if err != nil {
			return m, nil
		}
		return m, m.commitMove(result.TicketID, model.Statuses[clampColumn(result.Final.X)])
	}
	return m, nil
}

// commitMove persists a drop. If the destination column equals the
// ticket's current status the drop is a complete no-op: ordering within
// a column is not a persisted axis.
func (m Model) commitMove(ticketID string, dest model.Status) tea.Cmd {
	t, ok := m.tickets.Get(ticketID)
	if !ok || t.Status == dest {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		status := dest
		updated, err := m.tickets.Update(ctx, ticketID, remote.TicketPatch{Status: &status})
		return TicketUpdatedMsg{Ticket: updated, Err: err}
	}
}

// deleteTicket removes the ticket through the store's optimistic path.
func (m Model) deleteTicket(ticketID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		err := m.tickets.Delete(ctx, ticketID)
		return TicketDeletedMsg{TicketID: ticketID, Err: err}
	}
}

// selectedTicket returns the ticket under the keyboard cursor.
func (m Model) selectedTicket() (model.Ticket, bool) {
	columns := m.Columns()
	if m.col >= len(columns) {
		return model.Ticket{}, false
	}
	tickets := columns[m.col].Tickets
	if m.row >= len(tickets) {
		return model.Ticket{}, false
	}
	return tickets[m.row], true
}

// clampSelection keeps the cursor within the current projection.
func (m *Model) clampSelection() {
	columns := m.Columns()
	if m.col >= len(columns) {
		m.col = len(columns) - 1
	}
	n := len(columns[m.col].Tickets)
	if n == 0 {
		m.row = 0
	} else if m.row >= n {
		m.row = n - 1
	}
}

// columnAt maps a terminal x coordinate to a column index, or -1 when
// the pointer is outside the column area.
func (m Model) columnAt(x int) int {
	colWidth := m.width / len(model.Statuses)
	if colWidth <= 0 || x < 0 || x >= colWidth*len(model.Statuses) {
		return -1
	}
	return x / colWidth
}

// ticketAt maps terminal coordinates to the ticket card rendered there.
// Each card occupies one row below the column heading.
func (m Model) ticketAt(x, y int) (string, bool) {
	col := m.columnAt(x)
	if col < 0 {
		return "", false
	}
	row := y - cardAreaTop
	if row < 0 {
		return "", false
	}
	columns := m.Columns()
	if col >= len(columns) || row >= len(columns[col].Tickets) {
		return "", false
	}
	return columns[col].Tickets[row].ID, true
}

// cardAreaTop is the first row of cards inside a column: the column
// border plus its heading line.
const cardAreaTop = 2

// View renders the three columns side by side.
func (m Model) View() string {
	if m.boardID == "" {
		return theme.HelpStyle.Render("no board selected — press b to pick or create one")
	}

	columns := m.Columns()
	colWidth := m.width/len(model.Statuses) - 2
	if colWidth < 10 {
		colWidth = 10
	}

	rendered := make([]string, len(columns))
	for i, col := range columns {
		rendered[i] = m.renderColumn(i, col, colWidth)
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if m.searchMode {
		return lipgloss.JoinVertical(lipgloss.Left, m.searchInput.View(), board)
	}
	return board
}

func (m Model) renderColumn(index int, col tracker.Column, width int) string {
	heading := theme.StatusStyle(col.Status).Render(
		fmt.Sprintf("%s (%d)", statusLabel(col.Status), len(col.Tickets)))

	// Highlight the drop target while a drag is in progress.
	style := theme.ColumnStyle.Width(width)
	if m.drag.Dragging() && clampColumn(m.drag.Current().X) == index {
		style = style.BorderForeground(theme.ColorOrange)
	}

	lines := []string{heading}
	for rowIdx, t := range col.Tickets {
		lines = append(lines, m.renderCard(t, index, rowIdx, width))
	}

	height := m.height - 2
	if height < 3 {
		height = 3
	}
	return style.Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCard(t model.Ticket, col, row, width int) string {
	label := truncate(t.Title, width-4)
	marker := theme.PriorityStyle(t.Priority).Render("●")

	switch {
	case m.drag.Dragging() && m.drag.TicketID() == t.ID:
		return theme.DraggedCardStyle.Render("» " + label)
	case col == m.col && row == m.row && !m.drag.Dragging():
		return theme.SelectedCardStyle.Render(marker + " " + label)
	default:
		return theme.CardStyle.Render(marker + " " + label)
	}
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusTodo:
		return "To Do"
	case model.StatusInProgress:
		return "In Progress"
	case model.StatusDone:
		return "Done"
	}
	return string(s)
}

func clampColumn(x int) int {
	if x < 0 {
		return 0
	}
	if x >= len(model.Statuses) {
		return len(model.Statuses) - 1
	}
	return x
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
