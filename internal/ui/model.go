package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskpad/internal/tasklist"
	"github.com/nibzard/taskpad/internal/todo"
	"github.com/nibzard/taskpad/internal/utils"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeConfirmDelete
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
)

type tuiModel struct {
	ctx  context.Context
	ctrl *tasklist.Controller

	tasks  []todo.Task
	cursor int
	mode   mode
	loaded bool

	search textinput.Model
	title  textinput.Model
	desc   textarea.Model
	focus  formField

	pendingDelete todo.Task
	showHelp      bool
	status        string
	width         int
	height        int

	reconcileInterval time.Duration
}

type loadedMsg struct{}

type mutatedMsg struct {
	status string
}

type submittedMsg struct {
	task    todo.Task
	ok      bool
	editing bool
	title   string
}

type reconciledMsg struct {
	pending int
}

type tickMsg time.Time

func newTUIModel(ctx context.Context, ctrl *tasklist.Controller, reconcileInterval time.Duration) *tuiModel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search todos..."
	search.CharLimit = 256

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 256
	title.Width = 48

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.ShowLineNumbers = false
	desc.CharLimit = 2000
	desc.SetWidth(50)
	desc.SetHeight(4)

	return &tuiModel{
		ctx:               ctx,
		ctrl:              ctrl,
		search:            search,
		title:             title,
		desc:              desc,
		reconcileInterval: reconcileInterval,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd()}
	if m.reconcileInterval > 0 {
		cmds = append(cmds, tickCmd(m.reconcileInterval))
	}
	return tea.Batch(cmds...)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-10, 10)
		return m, nil
	case loadedMsg:
		m.loaded = true
		m.refresh()
		return m, nil
	case mutatedMsg:
		m.status = msg.status
		m.refresh()
		return m, nil
	case submittedMsg:
		m.handleSubmitted(msg)
		return m, nil
	case reconciledMsg:
		if msg.pending == 0 {
			m.status = "All changes saved"
		} else {
			m.status = fmt.Sprintf("%d changes still unsaved", msg.pending)
		}
		m.refresh()
		return m, nil
	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.reconcileInterval)}
		if m.ctrl.Pending() > 0 {
			cmds = append(cmds, m.reconcileCmd())
		}
		return m, tea.Batch(cmds...)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.formOpen():
			return m.updateForm(msg)
		case m.mode == modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case m.mode == modeSearch:
			return m.updateSearch(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "h", "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "h", "?":
		m.showHelp = true
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = clampCursor(len(m.tasks)-1, len(m.tasks))
	case "tab":
		if m.ctrl.View() == tasklist.ViewPending {
			m.setView(tasklist.ViewCompleted)
		} else {
			m.setView(tasklist.ViewPending)
		}
	case "1":
		m.setView(tasklist.ViewPending)
	case "2":
		m.setView(tasklist.ViewCompleted)
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "esc":
		if m.ctrl.Search() != "" {
			m.search.Reset()
			m.ctrl.SetSearch("")
			m.refresh()
		}
	case "a":
		if m.ctrl.OpenCreate() {
			return m, m.openForm()
		}
	case "e", "enter":
		if t, ok := m.selected(); ok && m.ctrl.OpenEdit(t.ID) {
			return m, m.openForm()
		}
	case "d":
		if t, ok := m.selected(); ok {
			m.pendingDelete = t
			m.mode = modeConfirmDelete
			m.status = fmt.Sprintf("Delete %q? (y/n)", utils.Truncate(t.Title, 40))
		}
	case " ", "space", "x":
		if t, ok := m.selected(); ok {
			return m, m.toggleCmd(t)
		}
	case "r":
		m.status = "Reloading..."
		return m, m.loadCmd()
	case "R":
		return m, m.reconcileCmd()
	}
	return m, nil
}

func (m *tuiModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		t := m.pendingDelete
		m.mode = modeList
		m.pendingDelete = todo.Task{}
		return m, m.removeCmd(t)
	case "n", "N", "esc", "q":
		m.mode = modeList
		m.pendingDelete = todo.Task{}
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m *tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = modeList
		m.search.Blur()
		m.search.Reset()
		m.ctrl.SetSearch("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetSearch(m.search.Value())
	m.refresh()
	return m, cmd
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.Cancel()
		m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case "tab", "shift+tab":
		return m, m.setFocus(1 - m.focus)
	case "ctrl+s":
		return m, m.submitCmd()
	case "enter":
		if m.focus == fieldTitle {
			return m, m.submitCmd()
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m *tuiModel) handleSubmitted(msg submittedMsg) {
	if !msg.ok {
		if strings.TrimSpace(msg.title) == "" {
			m.status = "Title cannot be empty"
		} else {
			m.status = "Task no longer exists"
		}
		return
	}
	m.closeForm()
	if msg.editing {
		m.status = fmt.Sprintf("Updated %q", utils.Truncate(msg.task.Title, 40))
	} else {
		m.status = fmt.Sprintf("Added %q", utils.Truncate(msg.task.Title, 40))
	}
	m.refresh()
	if i := slices.IndexFunc(m.tasks, func(t todo.Task) bool { return t.ID == msg.task.ID }); i >= 0 {
		m.cursor = i
	}
}

func (m *tuiModel) formOpen() bool {
	_, closed := m.ctrl.Form().(tasklist.Closed)
	return !closed
}

// openForm loads the controller draft into the inputs.
func (m *tuiModel) openForm() tea.Cmd {
	d := m.ctrl.Draft()
	m.title.SetValue(d.Title)
	m.title.CursorEnd()
	m.desc.SetValue(d.Description)
	m.status = ""
	return m.setFocus(fieldTitle)
}

func (m *tuiModel) closeForm() {
	m.title.Blur()
	m.desc.Blur()
	m.title.Reset()
	m.desc.Reset()
	m.focus = fieldTitle
}

func (m *tuiModel) setFocus(f formField) tea.Cmd {
	m.focus = f
	if f == fieldTitle {
		m.desc.Blur()
		return m.title.Focus()
	}
	m.title.Blur()
	return m.desc.Focus()
}

func (m *tuiModel) setView(v tasklist.View) {
	if m.ctrl.View() == v {
		return
	}
	m.ctrl.SetView(v)
	m.cursor = 0
	m.refresh()
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return todo.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// refresh re-reads the visible tasks from the controller.
func (m *tuiModel) refresh() {
	m.tasks = slices.Collect(m.ctrl.Visible())
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *tuiModel) loadCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.Initialize(ctx)
		return loadedMsg{}
	}
}

func (m *tuiModel) toggleCmd(t todo.Task) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		updated, ok := ctrl.ToggleComplete(ctx, t.ID)
		if !ok {
			return mutatedMsg{status: "Task no longer exists"}
		}
		if updated.Completed {
			return mutatedMsg{status: fmt.Sprintf("Completed %q", utils.Truncate(t.Title, 40))}
		}
		return mutatedMsg{status: fmt.Sprintf("Reopened %q", utils.Truncate(t.Title, 40))}
	}
}

func (m *tuiModel) removeCmd(t todo.Task) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		if !ctrl.Remove(ctx, t.ID) {
			return mutatedMsg{status: "Task no longer exists"}
		}
		return mutatedMsg{status: fmt.Sprintf("Deleted %q", utils.Truncate(t.Title, 40))}
	}
}

func (m *tuiModel) submitCmd() tea.Cmd {
	title, desc := m.title.Value(), m.desc.Value()
	m.ctrl.SetDraft(title, desc)
	_, editing := m.ctrl.Form().(tasklist.Editing)

	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		t, ok := ctrl.Submit(ctx)
		return submittedMsg{task: t, ok: ok, editing: editing, title: title}
	}
}

func (m *tuiModel) reconcileCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return reconciledMsg{pending: ctrl.Reconcile(ctx)}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
