// Package ticketform is the create/edit form for tickets. Tag names
// typed into the form are resolved to tag ids on save, creating tags
// that do not exist yet.
package ticketform

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/arenahub/trackboard/internal/model"
	"github.com/arenahub/trackboard/internal/remote"
	"github.com/arenahub/trackboard/internal/tracker"
)

// saveTimeout bounds the remote calls issued on save (tag resolution
// plus the ticket mutation itself).
const saveTimeout = 30 * time.Second

// dueDateLayout is the accepted due date format.
const dueDateLayout = "2006-01-02"

// SavedMsg reports the outcome of a save.
type SavedMsg struct {
	Ticket *model.Ticket
	Err    error
}

// CancelledMsg signals that the form was dismissed without saving.
type CancelledMsg struct{}

// formBindings holds form field values on the heap so huh's Value()
// pointers stay valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      string
	priority    string
	assigneeID  string
	dueDate     string
	tags        string
}

// Model is the Bubble Tea model for the ticket form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	tickets *tracker.TicketStore
	tags    *tracker.TagResolver
	boardID string
	editing *model.Ticket
	width   int
	height  int
}

// New creates a form for a new ticket on the given board. When editing
// is non-nil the form is pre-filled and saves as an update instead.
func New(tickets *tracker.TicketStore, tags *tracker.TagResolver, boardID string, editing *model.Ticket, width, height int) Model {
	fb := &formBindings{
		status:   string(model.StatusTodo),
		priority: string(model.PriorityMedium),
	}
	if editing != nil {
		fb.title = editing.Title
		fb.description = editing.Description
		fb.status = string(editing.Status)
		fb.priority = string(editing.Priority)
		if editing.Assignee != nil {
			fb.assigneeID = editing.Assignee.ID
		}
		if editing.DueDate != nil {
			fb.dueDate = editing.DueDate.Format(dueDateLayout)
		}
		fb.tags = strings.Join(editing.TagNames(), ", ")
	}

	m := Model{
		fb:      fb,
		tickets: tickets,
		tags:    tags,
		boardID: boardID,
		editing: editing,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the underlying form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	statusOptions := make([]huh.Option[string], len(model.Statuses))
	for i, s := range model.Statuses {
		statusOptions[i] = huh.NewOption(statusLabel(s), string(s))
	}
	priorityOptions := make([]huh.Option[string], len(model.Priorities))
	for i, p := range model.Priorities {
		priorityOptions[i] = huh.NewOption(priorityLabel(p), string(p))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs doing?").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details").
				Value(&m.fb.description),
			huh.NewSelect[string]().
				Title("Status").
				Options(statusOptions...).
				Value(&m.fb.status),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions...).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Assignee ID").
				Placeholder("Leave empty for unassigned").
				Value(&m.fb.assigneeID),
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.dueDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := time.Parse(dueDateLayout, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Tags").
				Placeholder("comma, separated, names").
				Value(&m.fb.tags),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.save()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, cmd
}

// save resolves tags and issues the create or update in a command, off
// the Update loop.
func (m Model) save() tea.Cmd {
	fb := *m.fb
	editing := m.editing
	boardID := m.boardID
	tickets := m.tickets
	tagResolver := m.tags

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		tagIDs, err := tagResolver.ResolveAll(ctx, splitTags(fb.tags))
		if err != nil {
			return SavedMsg{Err: fmt.Errorf("resolving tags: %w", err)}
		}

		var due *time.Time
		if s := strings.TrimSpace(fb.dueDate); s != "" {
			d, err := time.Parse(dueDateLayout, s)
			if err != nil {
				return SavedMsg{Err: fmt.Errorf("parsing due date: %w", err)}
			}
			due = &d
		}

		if editing == nil {
			ticket, err := tickets.Create(ctx, tracker.TicketDraft{
				BoardID:     boardID,
				Title:       fb.title,
				Description: fb.description,
				Status:      model.Status(fb.status),
				Priority:    model.Priority(fb.priority),
				AssigneeID:  fb.assigneeID,
				TagIDs:      tagIDs,
				DueDate:     due,
			})
			return SavedMsg{Ticket: ticket, Err: err}
		}

		status := model.Status(fb.status)
		priority := model.Priority(fb.priority)
		patch := remote.TicketPatch{
			Title:       &fb.title,
			Description: &fb.description,
			Status:      &status,
			Priority:    &priority,
			AssigneeID:  &fb.assigneeID,
			TagIDs:      &tagIDs,
			DueDate:     due,
		}
		ticket, err := tickets.Update(ctx, editing.ID, patch)
		return SavedMsg{Ticket: ticket, Err: err}
	}
}

// View renders the form.
func (m Model) View() string {
	return m.form.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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

func splitTags(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return "Urgent"
	case model.PriorityHigh:
		return "High"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityLow:
		return "Low"
	}
	return string(p)
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
