package board

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/team-task-board/internal/dto"
	"github.com/yukikurage/team-task-board/internal/models"
)

type fakeSource struct {
	tasks   []dto.TaskDTO
	listErr error
	moves   map[uint64]models.TaskStatus
}

func (f *fakeSource) ListUserTasks(_ context.Context, uid string, includeTeam bool) ([]dto.TaskDTO, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]dto.TaskDTO, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeSource) ListTeamTasks(_ context.Context, teamID uint64) ([]dto.TaskDTO, error) {
	var out []dto.TaskDTO
	for _, t := range f.tasks {
		if t.TeamID != nil && *t.TeamID == teamID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeSource) UpdateTask(_ context.Context, taskID uint64, req dto.UpdateTaskRequest) (*dto.TaskDTO, error) {
	for i := range f.tasks {
		if f.tasks[i].TaskID == taskID {
			f.tasks[i].Status = *req.Status
			f.moves[taskID] = *req.Status
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, errors.New("task not found")
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tasks: []dto.TaskDTO{
			{TaskID: 1, Title: "write docs", Status: models.TaskStatusTodo},
			{TaskID: 2, Title: "fix login", Status: models.TaskStatusTodo},
			{TaskID: 3, Title: "deploy", Status: models.TaskStatusInProgress},
		},
		moves: map[uint64]models.TaskStatus{},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and then every message its commands produce.
func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	for msg != nil {
		_, cmd := m.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
	}
}

func loaded(t *testing.T, src *fakeSource) *Model {
	t.Helper()
	m := New(context.Background(), src, "aliceUID01")
	send(t, m, m.Init()())
	require.NoError(t, m.Err())
	return m
}

func TestLoadGroupsByStatus(t *testing.T) {
	m := loaded(t, newFakeSource())

	assert.Len(t, m.columns[0], 2)
	assert.Len(t, m.columns[1], 1)
	assert.Empty(t, m.columns[2])

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, uint64(1), sel.TaskID)

	view := m.View()
	assert.Contains(t, view, "Todo (2)")
	assert.Contains(t, view, "In Progress (1)")
	assert.Contains(t, view, "Done (0)")
}

func TestNavigation(t *testing.T) {
	m := loaded(t, newFakeSource())

	send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	sel, _ := m.Selected()
	assert.Equal(t, uint64(2), sel.TaskID)

	send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	sel, _ = m.Selected()
	assert.Equal(t, uint64(2), sel.TaskID, "cursor stops at the last card")

	send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	sel, _ = m.Selected()
	assert.Equal(t, uint64(3), sel.TaskID, "row is clamped to the shorter column")

	send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	_, ok := m.Selected()
	assert.False(t, ok)

	send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.col)
}

func TestMoveTaskForwardAndBack(t *testing.T) {
	src := newFakeSource()
	m := loaded(t, src)

	send(t, m, runes("]"))
	assert.Equal(t, models.TaskStatusInProgress, src.moves[1])
	assert.Len(t, m.columns[0], 1)
	assert.Len(t, m.columns[1], 2)
	assert.Contains(t, m.View(), `Moved "write docs" to In Progress`)

	// the first column has no previous status
	send(t, m, runes("["))
	assert.Len(t, src.moves, 1)

	send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	send(t, m, runes("["))
	assert.Equal(t, models.TaskStatusTodo, src.moves[3])
	assert.Len(t, m.columns[0], 2)
}

func TestMoveFailureIsShown(t *testing.T) {
	m := loaded(t, newFakeSource())
	m.columns[0][0].TaskID = 404

	send(t, m, runes("]"))
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "task not found")
}

func TestLoadError(t *testing.T) {
	src := newFakeSource()
	src.listErr = errors.New("connection refused")
	m := New(context.Background(), src, "aliceUID01")
	send(t, m, m.Init()())

	assert.EqualError(t, m.Err(), "connection refused")
	assert.Contains(t, m.View(), "connection refused")

	src.listErr = nil
	send(t, m, runes("r"))
	assert.NoError(t, m.Err())
	assert.Len(t, m.columns[0], 2)
}

func TestQuit(t *testing.T) {
	m := loaded(t, newFakeSource())
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestTeamBoard(t *testing.T) {
	src := newFakeSource()
	teamID := uint64(7)
	src.tasks[2].TeamID = &teamID

	m := NewTeam(context.Background(), src, teamID)
	send(t, m, m.Init()())
	require.NoError(t, m.Err())

	assert.Empty(t, m.columns[0])
	require.Len(t, m.columns[1], 1)
	assert.Equal(t, "deploy", m.columns[1][0].Title)
	assert.Contains(t, m.View(), "team 7")
}
