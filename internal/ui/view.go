package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskpad/internal/tasklist"
	"github.com/nibzard/taskpad/internal/todo"
	"github.com/nibzard/taskpad/internal/utils"
)

const (
	emptyPendingMessage   = "No tasks found. Add a new task to get started!"
	emptyCompletedMessage = "No tasks found. Complete some tasks to see them here."
)

var (
	highlight = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	subtle    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	warning   = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#F25D94"}

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder(), true, true, false, true).BorderForeground(highlight)
	inactiveTabStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(subtle).Border(lipgloss.RoundedBorder(), true, true, false, true).BorderForeground(subtle)
	headerStyle      = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	doneStyle        = lipgloss.NewStyle().Foreground(subtle).Strikethrough(true)
	helpStyle        = lipgloss.NewStyle().Foreground(subtle)
	statusStyle      = lipgloss.NewStyle().Italic(true)
	warnStyle        = lipgloss.NewStyle().Foreground(warning)
	modalStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(highlight).Padding(1, 2)
	buttonStyle      = lipgloss.NewStyle().Padding(0, 2).Background(highlight).Foreground(lipgloss.Color("#FFFFFF"))
	ghostButtonStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(subtle)
)

type column struct {
	header string
	width  int
}

var columns = []column{
	{"ID", 15},
	{"Title", 24},
	{"Description", 32},
	{"Date Created/Updated", 28},
	{"Action", 8},
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("taskpad") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m)
		return b.String()
	}

	if m.formOpen() {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
		writeFooter(&b, m)
		return b.String()
	}

	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderSearch())
	b.WriteString("\n")

	if !m.loaded {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m)
		return b.String()
	}

	b.WriteString(m.renderTable())
	writeFooter(&b, m)
	return b.String()
}

func (m *tuiModel) renderTabs() string {
	pending, completed := m.ctrl.Counts()
	todos := fmt.Sprintf("Todos (%d)", pending)
	done := fmt.Sprintf("Completed (%d)", completed)
	if m.ctrl.View() == tasklist.ViewCompleted {
		return lipgloss.JoinHorizontal(lipgloss.Bottom, inactiveTabStyle.Render(todos), activeTabStyle.Render(done))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, activeTabStyle.Render(todos), inactiveTabStyle.Render(done))
}

func (m *tuiModel) renderSearch() string {
	if m.mode == modeSearch {
		return m.search.View() + "\n"
	}
	if term := m.ctrl.Search(); term != "" {
		return helpStyle.Render(fmt.Sprintf("Search: %s (esc to clear)", term)) + "\n"
	}
	return helpStyle.Render("Press / to search") + "\n"
}

func (m *tuiModel) renderTable() string {
	var b strings.Builder

	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = headerStyle.Width(col.width).Render(col.header)
	}
	b.WriteString("  " + strings.Join(cells, " ") + "\n")

	if len(m.tasks) == 0 {
		msg := emptyPendingMessage
		if m.ctrl.View() == tasklist.ViewCompleted {
			msg = emptyCompletedMessage
		}
		b.WriteString("\n  " + msg + "\n\n")
		return b.String()
	}

	for i, t := range m.tasks {
		row := formatRow(t)
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + row))
		case t.Completed:
			b.WriteString("  " + doneStyle.Render(row))
		default:
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func formatRow(t todo.Task) string {
	action := "[ ]"
	if t.Completed {
		action = "[x]"
	}
	values := []string{
		strconv.FormatInt(t.ID, 10),
		t.Title,
		firstLine(t.Description),
		t.DateCreated,
		action,
	}
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = lipgloss.NewStyle().Width(col.width).Render(utils.Truncate(values[i], col.width))
	}
	return strings.Join(cells, " ")
}

func (m *tuiModel) renderForm() string {
	heading := "Add New Todo"
	submit := "Add"
	if _, editing := m.ctrl.Form().(tasklist.Editing); editing {
		heading = "Edit Todo"
		submit = "Update"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	b.WriteString("Title\n")
	b.WriteString(m.title.View() + "\n\n")
	b.WriteString("Description\n")
	b.WriteString(m.desc.View() + "\n\n")
	b.WriteString(buttonStyle.Render(submit) + "  " + ghostButtonStyle.Render("Cancel") + "\n\n")
	b.WriteString(helpStyle.Render("tab: next field | ctrl+s: " + strings.ToLower(submit) + " | esc: cancel"))

	modal := modalStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, max(m.height-6, lipgloss.Height(modal)), lipgloss.Center, lipgloss.Center, modal)
	}
	return modal
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  a            Add a todo\n")
	b.WriteString("  e, enter     Edit the selected todo\n")
	b.WriteString("  d            Delete the selected todo\n")
	b.WriteString("  space, x     Mark as complete / incomplete\n")
	b.WriteString("  /            Search title and description\n")
	b.WriteString("  esc          Clear search / cancel form\n")
	b.WriteString("  tab, 1, 2    Switch between Todos and Completed\n")
	b.WriteString("  j/k, arrows  Move selection\n")
	b.WriteString("  r            Reload from storage\n")
	b.WriteString("  R            Retry unsaved changes\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func writeFooter(b *strings.Builder, m *tuiModel) {
	if n := m.ctrl.Pending(); n > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d unsaved changes (R to retry)", n)) + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}

	hint := "Press h for help | q to quit"
	if t, ok := m.selected(); ok && !m.formOpen() && !m.showHelp {
		hint = toggleLabel(t) + " (space) | " + hint
	}
	b.WriteString(helpStyle.Render(hint) + "\n")
}

// toggleLabel is the action offered for t by the toggle key.
func toggleLabel(t todo.Task) string {
	if t.Completed {
		return "Mark as incomplete"
	}
	return "Mark as complete"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
