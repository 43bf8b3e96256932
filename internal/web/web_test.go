package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/team-task-board/internal/client"
	"github.com/yukikurage/team-task-board/internal/dto"
	"github.com/yukikurage/team-task-board/internal/logging"
	"github.com/yukikurage/team-task-board/internal/models"
)

// fakeAPI is an in-memory stand-in for the REST API.
type fakeAPI struct {
	users   map[string]dto.UserDTO
	tasks   map[uint64]dto.TaskDTO
	teams   []dto.TeamDTO
	members map[uint64][]dto.UserDTO
	drafts  []dto.DraftDTO

	created []dto.CreateTaskRequest
	updated map[uint64]dto.UpdateTaskRequest
	deleted []uint64
	down    bool
}

func newFakeAPI() *fakeAPI {
	alice := dto.UserDTO{UserID: 1, Username: "alice", Email: "alice@example.com", UID: "aliceUID01"}
	bob := dto.UserDTO{UserID: 2, Username: "bob", Email: "bob@example.com", UID: "bobUID0002"}
	team := dto.TeamDTO{TeamID: 7, TeamName: "core"}
	return &fakeAPI{
		users: map[string]dto.UserDTO{alice.UID: alice, bob.UID: bob},
		tasks: map[uint64]dto.TaskDTO{
			10: {TaskID: 10, Title: "buy milk", Status: models.TaskStatusTodo, CreatedBy: 1, Tags: []string{"home"}},
			11: {TaskID: 11, Title: "ship release", Status: models.TaskStatusInProgress, CreatedBy: 1, TeamID: &team.TeamID, Team: &team,
				Assignees: []dto.UserDTO{bob}},
		},
		teams:   []dto.TeamDTO{team},
		members: map[uint64][]dto.UserDTO{7: {alice, bob}},
		updated: map[uint64]dto.UpdateTaskRequest{},
	}
}

func notFound(msg string) error {
	return &client.APIError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: msg}
}

func (f *fakeAPI) Login(_ context.Context, uid string) (*dto.UserDTO, error) {
	if f.down {
		return nil, errors.New("connection refused")
	}
	u, ok := f.users[uid]
	if !ok {
		return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "No user with this uid"}
	}
	return &u, nil
}

func (f *fakeAPI) Register(_ context.Context, req dto.RegisterRequest) (*dto.UserDTO, error) {
	for _, u := range f.users {
		if u.Username == req.Username {
			return nil, &client.APIError{StatusCode: http.StatusConflict, Code: "ALREADY_EXISTS", Message: "username already exists"}
		}
	}
	u := dto.UserDTO{UserID: uint64(len(f.users) + 1), Username: req.Username, Email: req.Email, UID: "newUID0003"}
	f.users[u.UID] = u
	return &u, nil
}

func (f *fakeAPI) GetTask(_ context.Context, taskID uint64) (*dto.TaskDTO, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, notFound("task not found")
	}
	return &t, nil
}

func (f *fakeAPI) ListUserTasks(_ context.Context, uid string, includeTeam bool) ([]dto.TaskDTO, error) {
	if f.down {
		return nil, errors.New("connection refused")
	}
	var out []dto.TaskDTO
	for _, id := range []uint64{10, 11} {
		if t, ok := f.tasks[id]; ok && (includeTeam || t.TeamID == nil) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListTeamTasks(_ context.Context, teamID uint64) ([]dto.TaskDTO, error) {
	var out []dto.TaskDTO
	for _, t := range f.tasks {
		if t.TeamID != nil && *t.TeamID == teamID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, req dto.CreateTaskRequest) (*dto.TaskDTO, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &client.APIError{StatusCode: http.StatusBadRequest, Code: "INVALID_INPUT", Message: "title is required"}
	}
	f.created = append(f.created, req)
	return &dto.TaskDTO{TaskID: 99, Title: req.Title}, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, taskID uint64, req dto.UpdateTaskRequest) (*dto.TaskDTO, error) {
	if _, ok := f.tasks[taskID]; !ok {
		return nil, notFound("task not found")
	}
	f.updated[taskID] = req
	t := f.tasks[taskID]
	return &t, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, taskID uint64) error {
	f.deleted = append(f.deleted, taskID)
	return nil
}

func (f *fakeAPI) GenerateTasks(_ context.Context, req dto.GenerateTasksRequest) ([]dto.DraftDTO, error) {
	return f.drafts, nil
}

func (f *fakeAPI) CreateTeam(_ context.Context, req dto.CreateTeamRequest) (*dto.TeamDetailDTO, error) {
	team := dto.TeamDTO{TeamID: 8, TeamName: req.TeamName}
	f.teams = append(f.teams, team)
	return &dto.TeamDetailDTO{TeamDTO: team}, nil
}

func (f *fakeAPI) ListUserTeams(_ context.Context, uid string) ([]dto.TeamDTO, error) {
	return f.teams, nil
}

func (f *fakeAPI) ListTeamMembers(_ context.Context, teamID uint64) ([]dto.UserDTO, error) {
	return f.members[teamID], nil
}

func (f *fakeAPI) AddTeamMember(_ context.Context, teamID uint64, req dto.AddMemberRequest) (*dto.UserDTO, error) {
	u, ok := f.users[req.UID]
	if !ok {
		return nil, notFound("user not found")
	}
	f.members[teamID] = append(f.members[teamID], u)
	return &u, nil
}

var testStore sessions.Store

func init() {
	gin.SetMode(gin.TestMode)
	testStore = NewCookieStore("test password", false)
}

type WebTestSuite struct {
	suite.Suite
	api     *fakeAPI
	router  *gin.Engine
	cookies []*http.Cookie
	logs    *bytes.Buffer
}

func (s *WebTestSuite) SetupTest() {
	s.api = newFakeAPI()
	s.logs = &bytes.Buffer{}
	s.router = NewRouter(s.api, testStore, logging.NewWithWriter(s.logs, "debug", "text"))
	s.cookies = nil
}

func TestWebTestSuite(t *testing.T) {
	suite.Run(t, new(WebTestSuite))
}

func (s *WebTestSuite) get(path string) *httptest.ResponseRecorder {
	return s.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *WebTestSuite) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.send(req)
}

// send keeps the cookie jar current the way a browser would.
func (s *WebTestSuite) send(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if fresh := w.Result().Cookies(); len(fresh) > 0 {
		s.cookies = fresh
	}
	return w
}

func (s *WebTestSuite) login() {
	w := s.post("/login", url.Values{"uid": {"aliceUID01"}})
	s.Require().Equal(http.StatusSeeOther, w.Code, w.Body.String())
	s.Equal("/", w.Header().Get("Location"))
}

func (s *WebTestSuite) TestPagesRequireLogin() {
	for _, path := range []string{"/", "/board", "/team-board", "/tasks/new", "/tasks/10/edit"} {
		w := s.get(path)
		s.Equal(http.StatusSeeOther, w.Code, path)
		s.Equal("/login", w.Header().Get("Location"), path)
	}
}

func (s *WebTestSuite) TestLoginFlow() {
	w := s.get("/login")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `name="uid"`)

	w = s.post("/login", url.Values{"uid": {""}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Please enter your User ID.")

	w = s.post("/login", url.Values{"uid": {"wrong"}})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "Authentication failed")

	s.login()
	w = s.get("/")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Welcome, alice!")
	s.Contains(w.Body.String(), "Create Task")
	s.Contains(w.Body.String(), "Team Board")

	// logged-in users skip the login form
	w = s.get("/login")
	s.Equal(http.StatusSeeOther, w.Code)

	w = s.post("/logout", nil)
	s.Equal(http.StatusSeeOther, w.Code)
	w = s.get("/")
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal("/login", w.Header().Get("Location"))
}

func (s *WebTestSuite) TestLoginWhenAPIDown() {
	s.api.down = true
	w := s.post("/login", url.Values{"uid": {"aliceUID01"}})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *WebTestSuite) TestRegister() {
	w := s.post("/register", url.Values{"username": {"carol"}, "email": {"carol@example.com"}})
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Contains(w.Body.String(), "newUID0003")

	w = s.post("/register", url.Values{"username": {"alice"}, "email": {"x@example.com"}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "username already exists")
}

func (s *WebTestSuite) TestPersonalBoardColumns() {
	s.login()
	w := s.get("/board")
	s.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "Todo (1)")
	s.Contains(body, "In Progress (1)")
	s.Contains(body, "Done (0)")
	s.Contains(body, "buy milk")
	s.Contains(body, "ship release")
	s.Contains(body, `<span class="tag">home</span>`)
}

func (s *WebTestSuite) TestBoardReportsUnreachableAPI() {
	s.login()
	s.api.down = true
	w := s.get("/board")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "The task service is unreachable")
	s.Contains(s.logs.String(), "connection refused")
}

func (s *WebTestSuite) TestTeamBoard() {
	s.login()
	w := s.get("/team-board")
	s.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "<h2>core</h2>")
	s.Contains(body, "ship release")
	s.NotContains(body, "buy milk")
	s.Contains(body, "bobUID0002")

	w = s.get("/team-board?team_id=12345")
	s.Equal(http.StatusSeeOther, w.Code)

	w = s.post("/team-board/teams", url.Values{"team_name": {"ops"}})
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal("/team-board?team_id=8", w.Header().Get("Location"))
}

func (s *WebTestSuite) TestCreateTask() {
	s.login()
	w := s.get("/tasks/new")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `value="2"`) // bob, via the shared team

	w = s.post("/tasks", url.Values{
		"title":     {"plan trip"},
		"status":    {"Todo"},
		"due_date":  {"2030-07-01"},
		"team_id":   {"7"},
		"assignees": {"1", "2"},
		"tags":      {"travel, fun"},
	})
	s.Require().Equal(http.StatusSeeOther, w.Code, w.Body.String())
	s.Equal("/team-board?team_id=7", w.Header().Get("Location"))

	s.Require().Len(s.api.created, 1)
	req := s.api.created[0]
	s.Equal(uint64(1), req.CreatedBy)
	s.Require().NotNil(req.TeamID)
	s.Equal(uint64(7), *req.TeamID)
	s.Equal([]uint64{1, 2}, req.Assignees)
	s.Require().NotNil(req.DueDate)
	s.Equal("2030-07-01", req.DueDate.String())
	s.Equal("travel, fun", req.Tags)

	w = s.post("/tasks", url.Values{"title": {"x"}, "due_date": {"07/01/2030"}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "due date must be YYYY-MM-DD")

	w = s.post("/tasks", url.Values{"title": {"  "}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "title is required")
}

func (s *WebTestSuite) TestDraftTasks() {
	s.login()
	due := models.NewDate(2030, 1, 2)
	s.api.drafts = []dto.DraftDTO{{Title: "book flights", DueDate: &due, Tags: []string{"travel", "urgent"}}}

	w := s.post("/tasks/draft", url.Values{"text": {"plan a trip"}})
	s.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "book flights")
	s.Contains(body, `value="2030-01-02"`)
	s.Contains(body, `value="travel, urgent"`)
}

func (s *WebTestSuite) TestEditTask() {
	s.login()
	w := s.get("/tasks/11/edit?return_to=/team-board?team_id=7")
	s.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "Edit: ship release")
	s.Contains(body, `<option selected>In Progress</option>`)

	w = s.post("/tasks/11", url.Values{
		"return_to": {"/team-board?team_id=7"},
		"title":     {"ship release"},
		"status":    {"Done"},
		"due_date":  {""},
		"tags":      {""},
		"assignees": {"2"},
	})
	s.Require().Equal(http.StatusSeeOther, w.Code)
	s.Equal("/team-board?team_id=7", w.Header().Get("Location"))

	req, ok := s.api.updated[11]
	s.Require().True(ok)
	s.Require().NotNil(req.Status)
	s.Equal(models.TaskStatusDone, *req.Status)
	s.True(req.DueDate.Set)
	s.Nil(req.DueDate.Value)
	s.Require().NotNil(req.Tags)
	s.Equal("", *req.Tags)
	s.Require().NotNil(req.Assignees)
	s.Equal([]uint64{2}, *req.Assignees)

	// the flash shows up once on the next page
	w = s.get("/board")
	s.Contains(w.Body.String(), "Task updated.")
	w = s.get("/board")
	s.NotContains(w.Body.String(), "Task updated.")

	w = s.post("/tasks/11/delete", url.Values{"return_to": {"https://evil.example"}})
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal("/board", w.Header().Get("Location"))
	s.Equal([]uint64{11}, s.api.deleted)

	w = s.get("/tasks/404/edit")
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal("/board", w.Header().Get("Location"))
}

func TestDeriveCookieKeys(t *testing.T) {
	hash1, block1 := DeriveCookieKeys("My secret password")
	hash2, block2 := DeriveCookieKeys("My secret password")
	other, _ := DeriveCookieKeys("another password")

	require.Len(t, hash1, 32)
	require.Len(t, block1, 32)
	assert.Equal(t, hash1, hash2)
	assert.Equal(t, block1, block2)
	assert.NotEqual(t, hash1, block1)
	assert.NotEqual(t, hash1, other)
}

func TestGroupByStatus(t *testing.T) {
	cols := groupByStatus([]dto.TaskDTO{
		{TaskID: 1, Status: models.TaskStatusDone},
		{TaskID: 2, Status: models.TaskStatusTodo},
		{TaskID: 3, Status: models.TaskStatusDone},
	})
	require.Len(t, cols, 3)
	assert.Equal(t, models.TaskStatusTodo, cols[0].Status)
	assert.Len(t, cols[0].Tasks, 1)
	assert.Empty(t, cols[1].Tasks)
	assert.Equal(t, uint64(1), cols[2].Tasks[0].TaskID)
	assert.Equal(t, uint64(3), cols[2].Tasks[1].TaskID)
}

func TestSafeReturn(t *testing.T) {
	assert.Equal(t, "/team-board?team_id=3", safeReturn("/team-board?team_id=3"))
	assert.Equal(t, "/board", safeReturn("//evil.example"))
	assert.Equal(t, "/board", safeReturn("https://evil.example"))
	assert.Equal(t, "/board", safeReturn(""))
}

func (s *WebTestSuite) TestWelcomeFlashAfterLogin() {
	s.login()
	w := s.get("/board")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `<p class="flash">Welcome, alice!</p>`)
}

// failingSession is a cookie session whose Save always fails.
type failingSession struct {
	sessions.Session
	queued []interface{}
}

func (f *failingSession) AddFlash(value interface{}, _ ...string) {
	f.queued = append(f.queued, value)
}

func (f *failingSession) Flashes(_ ...string) []interface{} {
	out := f.queued
	f.queued = nil
	return out
}

func (f *failingSession) Save() error {
	return errors.New("securecookie: the value is too long")
}

func TestFlashLogsSessionSaveFailure(t *testing.T) {
	logs := &bytes.Buffer{}
	s := &Server{logger: logging.NewWithWriter(logs, "debug", "text")}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/tasks", nil)
	ws := &webSession{store: &failingSession{}}

	s.flash(c, ws, "Task created.")
	assert.Contains(t, logs.String(), "failed to save session")
	assert.Contains(t, logs.String(), "value is too long")

	logs.Reset()
	msgs := s.takeFlashes(c, ws)
	assert.Equal(t, []string{"Task created."}, msgs)
	assert.Contains(t, logs.String(), "failed to save session")

	logs.Reset()
	assert.Nil(t, s.takeFlashes(c, ws))
	assert.Empty(t, logs.String())
}
