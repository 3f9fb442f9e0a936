// Package sync refreshes the active board's tickets in the background.
// There is no server push: the console polls, and per the cache
// discipline the last write to the local cache wins.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/tracker"
)

// fetchTimeout is the maximum time allowed for a single refresh.
const fetchTimeout = 30 * time.Second

// RefreshedMsg is a tea.Msg sent when a background refresh completes.
type RefreshedMsg struct {
	BoardID string
	Tickets []model.Ticket
	Err     error
}

// Poller periodically reloads the active board's tickets through the
// ticket store and reports results to the Bubble Tea runtime.
type Poller struct {
	tickets  *tracker.TicketStore
	interval time.Duration
	log      *logrus.Logger

	resultCh  chan RefreshedMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu      gosync.Mutex
	boardID string
	running bool
}

// New creates a poller. A non-positive interval falls back to two
// minutes.
func New(tickets *tracker.TicketStore, interval time.Duration, log *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{
		tickets:   tickets,
		interval:  interval,
		log:       log,
		resultCh:  make(chan RefreshedMsg, 4),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// SetBoard switches which board the poller refreshes. An empty id pauses
// polling until a board is selected.
func (p *Poller) SetBoard(boardID string) {
	p.mu.Lock()
	p.boardID = boardID
	p.mu.Unlock()
}

// Start launches the polling goroutine and returns the subscription
// command that delivers RefreshedMsg values to the program.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return p.WaitForResult()
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
	return p.WaitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate refresh of the active board.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued.
	}
	return nil
}

// WaitForResult returns a command that blocks until the next refresh
// result is available. The app re-issues it after each message.
func (p *Poller) WaitForResult() tea.Cmd {
	return func() tea.Msg {
		return <-p.resultCh
	}
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.refresh()
		case <-p.triggerCh:
			p.refresh()
		}
	}
}

func (p *Poller) refresh() {
	p.mu.Lock()
	boardID := p.boardID
	p.mu.Unlock()

	if boardID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	tickets, err := p.tickets.Load(ctx, boardID)
	if err != nil {
		p.log.WithError(err).WithField("board", boardID).
			Warn("background refresh failed")
	}

	select {
	case p.resultCh <- RefreshedMsg{BoardID: boardID, Tickets: tickets, Err: err}:
	case <-p.stopCh:
	}
}
