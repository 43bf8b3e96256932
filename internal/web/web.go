// Package web serves the browser UI. Every page is rendered from data fetched
// from the REST API; the UI itself has no database.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/client"
	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/dto"
	"github.com/yukikurage/team-task-board/internal/middleware"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// API is the part of the REST client the UI uses.
type API interface {
	Login(ctx context.Context, uid string) (*dto.UserDTO, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserDTO, error)

	GetTask(ctx context.Context, taskID uint64) (*dto.TaskDTO, error)
	ListUserTasks(ctx context.Context, uid string, includeTeam bool) ([]dto.TaskDTO, error)
	ListTeamTasks(ctx context.Context, teamID uint64) ([]dto.TaskDTO, error)
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskDTO, error)
	UpdateTask(ctx context.Context, taskID uint64, req dto.UpdateTaskRequest) (*dto.TaskDTO, error)
	DeleteTask(ctx context.Context, taskID uint64) error
	GenerateTasks(ctx context.Context, req dto.GenerateTasksRequest) ([]dto.DraftDTO, error)

	CreateTeam(ctx context.Context, req dto.CreateTeamRequest) (*dto.TeamDetailDTO, error)
	ListUserTeams(ctx context.Context, uid string) ([]dto.TeamDTO, error)
	ListTeamMembers(ctx context.Context, teamID uint64) ([]dto.UserDTO, error)
	AddTeamMember(ctx context.Context, teamID uint64, req dto.AddMemberRequest) (*dto.UserDTO, error)
}

// Server holds what the page handlers share.
type Server struct {
	api    API
	logger *slog.Logger
}

// pageHandler serves a page for a logged-in user.
type pageHandler func(c *gin.Context, ws *webSession)

// NewRouter builds the UI router.
func NewRouter(api API, store sessions.Store, logger *slog.Logger) *gin.Engine {
	s := &Server{api: api, logger: logger}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(constants.WebSessionCookieName, store))
	r.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"),
	))

	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.GET("/register", s.registerPage)
	r.POST("/register", s.register)
	r.POST("/logout", s.logout)

	r.GET("/", s.page(s.home))
	r.GET("/board", s.page(s.personalBoard))
	r.GET("/team-board", s.page(s.teamBoard))
	r.POST("/team-board/teams", s.page(s.createTeam))
	r.POST("/team-board/members", s.page(s.addMember))
	r.GET("/tasks/new", s.page(s.newTaskPage))
	r.POST("/tasks", s.page(s.createTask))
	r.POST("/tasks/draft", s.page(s.draftTasks))
	r.GET("/tasks/:id/edit", s.page(s.editTaskPage))
	r.POST("/tasks/:id", s.page(s.updateTask))
	r.POST("/tasks/:id/delete", s.page(s.deleteTask))

	return r
}

// page builds the request's webSession and sends anonymous visitors to the
// login form.
func (s *Server) page(h pageHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := loadWebSession(c)
		if !ws.Authenticated() {
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		c.Set(constants.ContextKeyUserID, ws.User.UserID)
		h(c, ws)
	}
}

// render fills the layout fields shared by every page.
func (s *Server) render(c *gin.Context, ws *webSession, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = ws.User
	data["Flashes"] = s.takeFlashes(c, ws)
	c.HTML(status, name, data)
}

// flash queues msg for the next page. A session that cannot be saved only
// loses the message, so the failure is logged and the request goes on.
func (s *Server) flash(c *gin.Context, ws *webSession, msg string) {
	if err := ws.flash(msg); err != nil {
		s.sessionSaveFailed(c, err)
	}
}

func (s *Server) takeFlashes(c *gin.Context, ws *webSession) []string {
	msgs, err := ws.takeFlashes()
	if err != nil {
		s.sessionSaveFailed(c, err)
	}
	return msgs
}

func (s *Server) sessionSaveFailed(c *gin.Context, err error) {
	s.logger.ErrorContext(c.Request.Context(), "failed to save session",
		"request_id", middleware.GetRequestID(c), "error", err)
}

// apiMessage turns an API failure into text for the page. Transport errors
// are logged and reported generically.
func (s *Server) apiMessage(c *gin.Context, err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	s.logger.ErrorContext(c.Request.Context(), "task API request failed",
		"request_id", middleware.GetRequestID(c), "error", err)
	return "The task service is unreachable. Please try again."
}

// column is one status lane of a board.
type column struct {
	Status models.TaskStatus
	Tasks  []dto.TaskDTO
}

// groupByStatus splits tasks into the three board columns, keeping the API order.
func groupByStatus(tasks []dto.TaskDTO) []column {
	columns := make([]column, len(models.TaskStatuses))
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, status := range models.TaskStatuses {
		columns[i] = column{Status: status, Tasks: []dto.TaskDTO{}}
		index[status] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, t)
		}
	}
	return columns
}

var templateFuncs = template.FuncMap{
	"statuses": func() []models.TaskStatus { return models.TaskStatuses },
	"dateValue": func(d *models.Date) string {
		if d == nil {
			return ""
		}
		return d.String()
	},
	"join": utils.JoinTagList,
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, errors.New("dict: odd number of arguments")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, errors.New("dict: keys must be strings")
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	"hasID": func(ids []uint64, id uint64) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	},
}
