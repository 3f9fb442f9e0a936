// Package boardmgr is the board management view: pick the active board,
// create new boards, flag a default, and delete boards (cascading their
// tickets out of the local cache).
package boardmgr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/arenahub/trackboard/internal/keys"
	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/theme"
	"github.com/arenahub/trackboard/internal/tracker"
)

// mutationTimeout bounds remote board operations.
const mutationTimeout = 30 * time.Second

// CloseMsg signals the parent to close the board view.
type CloseMsg struct{}

// BoardSelectedMsg signals that the user picked a new active board.
type BoardSelectedMsg struct {
	Board model.Board
}

// BoardsChangedMsg signals that boards were created, updated, or deleted.
type BoardsChangedMsg struct{}

type boardMode int

const (
	modeList boardMode = iota
	modeForm
	modeConfirmDelete
)

// formBindings holds form field values on the heap so huh's Value()
// pointers stay valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	color       string
	confirm     bool
}

type boardSavedMsg struct{ err error }
type boardDeletedMsg struct{ err error }

// Model is the Bubble Tea model for board management.
type Model struct {
	mode        boardMode
	registry    *tracker.Registry
	keys        *keys.KeyMap
	selectedIdx int
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a board manager model.
func New(registry *tracker.Registry, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:     modeList,
		registry: registry,
		keys:     k,
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Board saved"
		}
		m.mode = modeList
		return m, func() tea.Msg { return BoardsChangedMsg{} }

	case boardDeletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Board deleted"
		}
		m.mode = modeList
		m.clampSelection()
		return m, func() tea.Msg { return BoardsChangedMsg{} }

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.handleListKey(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	boards := m.registry.Boards()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(boards) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(boards)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(boards) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(boards) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.selectedIdx < len(boards) {
			board := boards[m.selectedIdx]
			return m, func() tea.Msg { return BoardSelectedMsg{Board: board} }
		}
		return m, nil

	case msg.String() == "n":
		m.fb.name = ""
		m.fb.description = ""
		m.fb.color = "#5B9BD5"
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "d":
		if m.selectedIdx < len(boards) {
			return m, m.setDefault(boards[m.selectedIdx].ID)
		}
		return m, nil

	case msg.String() == "x":
		if len(boards) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Board name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Color").
				Placeholder("#5B9BD5").
				Value(&m.fb.color),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if boards := m.registry.Boards(); m.selectedIdx < len(boards) {
		name = boards[m.selectedIdx].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete board %q?", name)).
				Description("All tickets on this board will be deleted with it.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.saveBoard()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm {
			if boards := m.registry.Boards(); m.selectedIdx < len(boards) {
				return m, m.deleteBoard(boards[m.selectedIdx].ID)
			}
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) saveBoard() tea.Cmd {
	name := m.fb.name
	description := m.fb.description
	color := m.fb.color

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		_, err := m.registry.Create(ctx, name, description, color)
		return boardSavedMsg{err: err}
	}
}

func (m Model) setDefault(boardID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		isDefault := true
		_, err := m.registry.Update(ctx, boardID, remote.BoardUpdate{IsDefault: &isDefault})
		return boardSavedMsg{err: err}
	}
}

func (m Model) deleteBoard(boardID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		err := m.registry.Delete(ctx, boardID)
		return boardDeletedMsg{err: err}
	}
}

func (m *Model) clampSelection() {
	boards := m.registry.Boards()
	if m.selectedIdx >= len(boards) && m.selectedIdx > 0 {
		m.selectedIdx = len(boards) - 1
	}
}

// View renders the board list or the active form.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		if m.form != nil {
			return m.form.View()
		}
	case modeConfirmDelete:
		if m.confirmForm != nil {
			return m.confirmForm.View()
		}
	}

	boards := m.registry.Boards()
	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render("Boards"))
	b.WriteString("\n\n")

	if len(boards) == 0 {
		b.WriteString(theme.HelpStyle.Render("no boards yet — press n to create one"))
	}

	for i, board := range boards {
		label := board.Name
		if board.IsDefault {
			label += " (default)"
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedCardStyle.Render("> " + label))
		} else {
			b.WriteString(theme.CardStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(
		"enter select · n new · d set default · x delete · esc back"))

	if m.statusMsg != "" {
		b.WriteString("\n" + theme.HelpStyle.Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 70 {
		w = 70
	}
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
