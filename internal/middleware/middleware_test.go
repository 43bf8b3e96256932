package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/logging"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTasks map[uint64]*models.Task

func (f fakeTasks) Get(taskID uint64) (*models.Task, error) {
	if taskID == 99 {
		return nil, fmt.Errorf("failed to get task: %w", assert.AnError)
	}
	task, ok := f[taskID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	return task, nil
}

type fakeTeams map[uint64]*models.Team

func (f fakeTeams) Get(teamID uint64) (*models.Team, error) {
	team, ok := f[teamID]
	if !ok {
		return nil, services.ErrTeamNotFound
	}
	return team, nil
}

func sessionRouter() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(42))
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.String(http.StatusOK, "%d", userID)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	r := sessionRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())
}

func TestGetUserID_Types(t *testing.T) {
	cases := []struct {
		value any
		want  uint64
		ok    bool
	}{
		{uint64(3), 3, true},
		{uint(4), 4, true},
		{5, 5, true},
		{int64(6), 6, true},
		{-1, 0, false},
		{uint64(0), 0, false},
		{"7", 0, false},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(constants.ContextKeyUserID, tc.value)
		got, ok := GetUserID(c)
		assert.Equal(t, tc.ok, ok, "%v", tc.value)
		assert.Equal(t, tc.want, got, "%v", tc.value)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetUserID(c)
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug", "json")

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(constants.HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"status":200`)

	// a caller-supplied id is kept
	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(constants.HeaderRequestID))

	// a malformed one is replaced
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(constants.HeaderRequestID))
}

func TestLoadTask(t *testing.T) {
	tasks := fakeTasks{1: {TaskID: 1, Title: "one"}}

	r := gin.New()
	r.GET("/tasks/:ref", LoadTask(tasks, "ref"), func(c *gin.Context) {
		task, ok := GetTask(c)
		require.True(t, ok)
		c.String(http.StatusOK, task.Title)
	})

	cases := []struct {
		path   string
		status int
	}{
		{"/tasks/1", http.StatusOK},
		{"/tasks/2", http.StatusNotFound},
		{"/tasks/abc", http.StatusBadRequest},
		{"/tasks/0", http.StatusBadRequest},
		{"/tasks/99", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
	}
}

func TestLoadTeam(t *testing.T) {
	teams := fakeTeams{3: {TeamID: 3, TeamName: "core"}}

	r := gin.New()
	r.GET("/team-tasks/:team_id", LoadTeam(teams, "team_id"), func(c *gin.Context) {
		team, ok := GetTeam(c)
		require.True(t, ok)
		c.String(http.StatusOK, team.TeamName)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/team-tasks/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "core", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/team-tasks/4", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
