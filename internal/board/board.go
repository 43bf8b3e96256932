// Package board is a terminal kanban view of one user's tasks, backed by the
// REST API.
package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yukikurage/team-task-board/internal/dto"
	"github.com/yukikurage/team-task-board/internal/models"
)

// Source is the part of the API client the board needs.
type Source interface {
	ListUserTasks(ctx context.Context, uid string, includeTeam bool) ([]dto.TaskDTO, error)
	ListTeamTasks(ctx context.Context, teamID uint64) ([]dto.TaskDTO, error)
	UpdateTask(ctx context.Context, taskID uint64, req dto.UpdateTaskRequest) (*dto.TaskDTO, error)
}

type tasksLoadedMsg struct {
	tasks []dto.TaskDTO
	err   error
}

type taskMovedMsg struct {
	task *dto.TaskDTO
	err  error
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx    context.Context
	api    Source
	title  string
	list   func(ctx context.Context) ([]dto.TaskDTO, error)
	keys   KeyMap
	help   help.Model
	styles styles

	columns [][]dto.TaskDTO
	col     int
	row     int

	loading bool
	status  string
	err     error
	width   int
}

// New returns a board of the tasks the user with the given uid sees: their
// personal tasks and the team tasks they created or are assigned to.
func New(ctx context.Context, api Source, uid string) *Model {
	m := newModel(ctx, api, uid)
	m.list = func(ctx context.Context) ([]dto.TaskDTO, error) {
		return api.ListUserTasks(ctx, uid, true)
	}
	return m
}

// NewTeam returns a board of one team's tasks.
func NewTeam(ctx context.Context, api Source, teamID uint64) *Model {
	m := newModel(ctx, api, fmt.Sprintf("team %d", teamID))
	m.list = func(ctx context.Context) ([]dto.TaskDTO, error) {
		return api.ListTeamTasks(ctx, teamID)
	}
	return m
}

func newModel(ctx context.Context, api Source, title string) *Model {
	return &Model{
		ctx:     ctx,
		api:     api,
		title:   title,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		styles:  newStyles(),
		columns: make([][]dto.TaskDTO, len(models.TaskStatuses)),
		loading: true,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.list(m.ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) move(task dto.TaskDTO, to models.TaskStatus) tea.Cmd {
	return func() tea.Msg {
		updated, err := m.api.UpdateTask(m.ctx, task.TaskID, dto.UpdateTaskRequest{Status: &to})
		return taskMovedMsg{task: updated, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.setTasks(msg.tasks)
		}
		return m, nil

	case taskMovedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Moved %q to %s", msg.task.Title, msg.task.Status)
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.columns[m.col])-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Left):
		m.focusColumn(m.col - 1)
	case key.Matches(msg, m.keys.Right):
		m.focusColumn(m.col + 1)
	case key.Matches(msg, m.keys.Prev):
		return m.shift(-1)
	case key.Matches(msg, m.keys.Next):
		return m.shift(1)
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.status = ""
		return m.load()
	}
	return nil
}

// shift moves the selected task one column left or right.
func (m *Model) shift(delta int) tea.Cmd {
	task, ok := m.Selected()
	if !ok {
		return nil
	}
	target := m.col + delta
	if target < 0 || target >= len(models.TaskStatuses) {
		return nil
	}
	return m.move(task, models.TaskStatuses[target])
}

func (m *Model) focusColumn(col int) {
	if col < 0 || col >= len(m.columns) {
		return
	}
	m.col = col
	m.clampRow()
}

func (m *Model) clampRow() {
	if n := len(m.columns[m.col]); m.row >= n {
		m.row = max(n-1, 0)
	}
}

func (m *Model) setTasks(tasks []dto.TaskDTO) {
	for i := range m.columns {
		m.columns[i] = m.columns[i][:0]
	}
	for _, t := range tasks {
		for i, status := range models.TaskStatuses {
			if t.Status == status {
				m.columns[i] = append(m.columns[i], t)
			}
		}
	}
	m.clampRow()
}

// Selected returns the task under the cursor.
func (m *Model) Selected() (dto.TaskDTO, bool) {
	tasks := m.columns[m.col]
	if m.row < 0 || m.row >= len(tasks) {
		return dto.TaskDTO{}, false
	}
	return tasks[m.row], true
}

// Err returns the last API error, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Task Board · " + m.title))
	b.WriteString("\n")

	colWidth := 28
	if m.width > 0 {
		colWidth = max(m.width/len(m.columns)-4, 16)
	}

	rendered := make([]string, len(m.columns))
	for i, tasks := range m.columns {
		rendered[i] = m.renderColumn(i, tasks, colWidth)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
	case m.loading:
		b.WriteString(m.styles.Meta.Render("Loading..."))
	case m.status != "":
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderColumn(i int, tasks []dto.TaskDTO, width int) string {
	style := m.styles.Column
	if i == m.col {
		style = m.styles.ColumnFocus
	}

	lines := []string{m.styles.Header.Render(fmt.Sprintf("%s (%d)", models.TaskStatuses[i], len(tasks)))}
	for j, t := range tasks {
		card := m.styles.Card
		if i == m.col && j == m.row {
			card = m.styles.CardActive
		}
		lines = append(lines, card.Width(width).Render(truncate(t.Title, width)))
		if meta := taskMeta(t); meta != "" {
			lines = append(lines, m.styles.Meta.Render(truncate(meta, width)))
		}
	}
	return style.Width(width + 2).Render(strings.Join(lines, "\n"))
}

func taskMeta(t dto.TaskDTO) string {
	var parts []string
	if t.Team != nil {
		parts = append(parts, t.Team.TeamName)
	}
	if t.DueDate != nil {
		parts = append(parts, "due "+t.DueDate.String())
	}
	if len(t.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(t.Tags, " #"))
	}
	return strings.Join(parts, " · ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
