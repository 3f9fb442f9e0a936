// Package app is the root Bubble Tea model: it routes between the
// board, timeline, board management, ticket form, and help views, and
// wires the background poller into the program loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/arenahub/trackboard/internal/drag"
	"github.com/arenahub/trackboard/internal/keys"
	"github.com/arenahub/trackboard/internal/model"
	appsync "github.com/arenahub/trackboard/internal/sync"
	"github.com/arenahub/trackboard/internal/timeline"
	"github.com/arenahub/trackboard/internal/tracker"
	"github.com/arenahub/trackboard/internal/ui"
	"github.com/arenahub/trackboard/internal/ui/boardmgr"
	"github.com/arenahub/trackboard/internal/ui/boardview"
	helpview "github.com/arenahub/trackboard/internal/ui/help"
	"github.com/arenahub/trackboard/internal/ui/ticketform"
	"github.com/arenahub/trackboard/internal/ui/timelineview"
)

// startupTimeout bounds the initial board and ticket load.
const startupTimeout = 30 * time.Second

// noticeDuration is how long a transient status notice stays visible.
const noticeDuration = 4 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewTimeline
	ViewBoards
	ViewTicketForm
	ViewHelp
)

// boardsLoadedMsg carries the result of the initial board fetch.
type boardsLoadedMsg struct {
	boards []model.Board
	err    error
}

// noticeExpiredMsg clears a transient status notice.
type noticeExpiredMsg struct {
	id int
}

// Options configures the root model.
type Options struct {
	Registry *tracker.Registry
	Tickets  *tracker.TicketStore
	Tags     *tracker.TagResolver
	Poller   *appsync.Poller
	Log      *logrus.Logger

	// RequestedBoardID is the board asked for on the command line; it
	// wins over the persisted selection and the default board.
	RequestedBoardID string
	TimelineMode     timeline.Mode
}

// Model is the root application model.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout

	registry *tracker.Registry
	tickets  *tracker.TicketStore
	tags     *tracker.TagResolver
	poller   *appsync.Poller
	log      *logrus.Logger
	keys     *keys.KeyMap
	drag     *drag.Controller

	boardView    boardview.Model
	timelineView timelineview.Model
	boardsView   boardmgr.Model
	formView     ticketform.Model
	helpView     helpview.Model

	requestedBoardID string
	activeBoard      *model.Board

	notice   string
	noticeID int

	ready bool
}

// New creates the root model. The drag controller is shared between the
// board and timeline views; only one gesture can be active at a time.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	dc := drag.New()
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	mode := opts.TimelineMode
	if mode == "" {
		mode = timeline.ModeMonth
	}

	return Model{
		currentView:      ViewBoard,
		registry:         opts.Registry,
		tickets:          opts.Tickets,
		tags:             opts.Tags,
		poller:           opts.Poller,
		log:              log,
		keys:             k,
		drag:             dc,
		boardView:        boardview.New(opts.Tickets, dc, k, 80, 24),
		timelineView:     timelineview.New(opts.Tickets, dc, k, mode, 80, 24),
		boardsView:       boardmgr.New(opts.Registry, k, 80, 24),
		helpView:         helpview.New(k, 80, 24),
		requestedBoardID: opts.RequestedBoardID,
	}
}

// Init loads the board list and starts the background poller.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadBoards(), m.poller.Start())
}

// loadBoards fetches the board list, falling back to the local snapshot
// when the remote store is unreachable.
func (m Model) loadBoards() tea.Cmd {
	registry := m.registry
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		boards, err := registry.Load(ctx)
		if err != nil {
			if cached, cerr := registry.LoadCached(ctx); cerr == nil && len(cached) > 0 {
				return boardsLoadedMsg{boards: cached, err: err}
			}
		}
		return boardsLoadedMsg{boards: boards, err: err}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.boardView.SetSize(w, h)
		m.timelineView.SetSize(w, h)
		m.boardsView.SetSize(w, h)
		m.formView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		return m.updateActiveView(msg)

	case boardsLoadedMsg:
		var cmds []tea.Cmd
		if msg.err != nil {
			m2, cmd := m.showNotice(fmt.Sprintf("offline: %v", msg.err))
			m = m2
			cmds = append(cmds, cmd)
		}

		requested := m.requestedBoardID
		if requested == "" {
			requested = m.registry.LastActiveBoard(context.Background())
		}
		if board := m.registry.ResolveActive(requested); board != nil {
			m2, cmd := m.activateBoard(*board)
			m = m2
			cmds = append(cmds, cmd)
		} else {
			// Empty state: no boards exist yet.
			m.activeBoard = nil
			m.currentView = ViewBoards
		}
		return m, tea.Batch(cmds...)

	case appsync.RefreshedMsg:
		cmds := []tea.Cmd{m.poller.WaitForResult()}
		if msg.Err != nil {
			m2, cmd := m.showNotice("refresh failed; showing cached tickets")
			m = m2
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case boardview.TicketUpdatedMsg:
		if msg.Err != nil {
			return m.noticeCmd(fmt.Sprintf("move failed, change rolled back: %v", msg.Err))
		}
		return m, nil

	case boardview.TicketDeletedMsg:
		if msg.Err != nil {
			return m.noticeCmd(fmt.Sprintf("delete failed: %v", msg.Err))
		}
		return m, nil

	case timelineview.TicketRescheduledMsg:
		if msg.Err != nil {
			return m.noticeCmd(fmt.Sprintf("reschedule failed, change rolled back: %v", msg.Err))
		}
		return m, nil

	case boardview.NewTicketMsg:
		if m.activeBoard == nil {
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewTicketForm
		m.formView = ticketform.New(m.tickets, m.tags, m.activeBoard.ID, nil,
			m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.formView.Init()

	case boardview.EditTicketMsg:
		m.previousView = m.currentView
		m.currentView = ViewTicketForm
		ticket := msg.Ticket
		m.formView = ticketform.New(m.tickets, m.tags, ticket.BoardID, &ticket,
			m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.formView.Init()

	case ticketform.SavedMsg:
		m.currentView = m.previousView
		if msg.Err != nil {
			return m.noticeCmd(fmt.Sprintf("save failed: %v", msg.Err))
		}
		return m, nil

	case ticketform.CancelledMsg:
		m.currentView = m.previousView
		return m, nil

	case boardmgr.CloseMsg:
		if m.activeBoard == nil {
			// Nowhere to go back to without a board.
			return m, nil
		}
		m.currentView = ViewBoard
		return m, nil

	case boardmgr.BoardSelectedMsg:
		m2, cmd := m.activateBoard(msg.Board)
		m = m2
		m.currentView = ViewBoard
		return m, cmd

	case boardmgr.BoardsChangedMsg:
		// The active board may have been deleted.
		if m.activeBoard != nil {
			if _, ok := m.registry.Get(m.activeBoard.ID); !ok {
				if board := m.registry.ResolveActive(""); board != nil {
					m2, cmd := m.activateBoard(*board)
					return m2, cmd
				}
				m.activeBoard = nil
				m.poller.SetBoard("")
			}
		}
		return m, nil

	case tea.KeyMsg:
		if updated, cmd, handled := m.handleGlobalKey(msg); handled {
			return updated, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that apply regardless of the active
// view. Keys are not intercepted while a form owns the input.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.poller.Stop()
		return m, tea.Quit, true
	}

	if m.currentView == ViewTicketForm || m.currentView == ViewBoards {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewBoard || m.currentView == ViewTimeline {
			m.poller.Stop()
			return m, tea.Quit, true
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.ToggleView):
		switch m.currentView {
		case ViewBoard:
			m.boardView.Unmount()
			m.currentView = ViewTimeline
			return m, nil, true
		case ViewTimeline:
			m.timelineView.Unmount()
			m.currentView = ViewBoard
			return m, nil, true
		}

	case key.Matches(msg, m.keys.Boards):
		if m.currentView == ViewBoard || m.currentView == ViewTimeline {
			m.boardView.Unmount()
			m.timelineView.Unmount()
			m.previousView = m.currentView
			m.currentView = ViewBoards
			return m, nil, true
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewBoard || m.currentView == ViewTimeline {
			return m, m.poller.Refresh(), true
		}
	}

	return m, nil, false
}

// activateBoard switches the active board everywhere: views, poller,
// and the persisted selection.
func (m Model) activateBoard(board model.Board) (Model, tea.Cmd) {
	b := board
	m.activeBoard = &b
	m.boardView.SetBoard(board.ID)
	m.timelineView.SetBoard(board.ID)
	m.poller.SetBoard(board.ID)
	m.registry.SelectBoard(context.Background(), board.ID)

	tickets := m.tickets
	boardID := board.ID
	log := m.log
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		// Seed from the snapshot so the view has content immediately,
		// then fetch fresh data.
		if _, err := tickets.LoadCached(ctx, boardID); err != nil {
			log.WithError(err).WithField("board", boardID).
				Debug("no cached tickets")
		}
		_, err := tickets.Load(ctx, boardID)
		return appsync.RefreshedMsg{BoardID: boardID, Err: err}
	}
}

// showNotice sets a transient status notice and schedules its expiry.
func (m Model) showNotice(text string) (Model, tea.Cmd) {
	m.notice = text
	m.noticeID++
	id := m.noticeID
	return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m Model) noticeCmd(text string) (Model, tea.Cmd) {
	return m.showNotice(text)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewTimeline:
		m.timelineView, cmd = m.timelineView.Update(msg)
	case ViewBoards:
		m.boardsView, cmd = m.boardsView.Update(msg)
	case ViewTicketForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerCounters())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.notice)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBoard:
		return m.boardView.View()
	case ViewTimeline:
		return m.timelineView.View()
	case ViewBoards:
		return m.boardsView.View()
	case ViewTicketForm:
		return m.formView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

func (m Model) headerTitle() string {
	if m.activeBoard == nil {
		return "Trackboard"
	}
	return "Trackboard — " + m.activeBoard.Name
}

// headerCounters renders the derived board counters; they are
// recomputed from the cache on every frame.
func (m Model) headerCounters() string {
	if m.activeBoard == nil {
		return ""
	}
	stats := m.tickets.Stats(m.activeBoard.ID)
	s := fmt.Sprintf("%d tickets · %d done · %d active", stats.Total, stats.Completed, stats.InProgress)
	if stats.Overdue > 0 {
		s += fmt.Sprintf(" · %d overdue", stats.Overdue)
	}
	return s
}

func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help"
	case ViewBoards:
		return "enter select | n new | d default | x delete | esc back"
	case ViewTicketForm:
		return "enter next | esc cancel"
	case ViewTimeline:
		if m.drag.Dragging() {
			return "h/l shift day | enter drop | esc cancel"
		}
		return "space grab | m mode | [/] window | s sort | tab board | ? help"
	default:
		if m.drag.Dragging() {
			return "h/l move | enter drop | esc cancel"
		}
		return "space grab | n new | e edit | x delete | / search | p priority | tab timeline | b boards | ? help"
	}
}
