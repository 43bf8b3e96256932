// Package server assembles the REST API: services, session store, middleware
// and routes.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukikurage/team-task-board/internal/config"
	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/handlers"
	"github.com/yukikurage/team-task-board/internal/middleware"
	"github.com/yukikurage/team-task-board/internal/repository"
	"github.com/yukikurage/team-task-board/internal/services"
)

// Services bundles the business layer the routes are served from.
type Services struct {
	Users *services.UserService
	Teams *services.TeamService
	Tasks *services.TaskService
	Tags  *services.TagService
}

// NewServices wires repositories and services over db. drafter may be nil.
func NewServices(db *gorm.DB, drafter services.TaskDrafter) *Services {
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)

	return &Services{
		Users: services.NewUserService(userRepo),
		Teams: services.NewTeamService(teamRepo, userRepo),
		Tasks: services.NewTaskService(taskRepo, userRepo, teamRepo, drafter),
		Tags:  services.NewTagService(tagRepo, userRepo, teamRepo),
	}
}

// NewSessionStore builds the session store named by SESSION_STORE: "redis"
// or the signed cookie store.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		s, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			redisAddr,
			"", // username (empty for default user)
			"", // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = s
	case "cookie", "":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// NewRouter registers every route of the API.
func NewRouter(cfg *config.Config, svc *Services, store sessions.Store, db *gorm.DB, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	// uids are standard base64 and may contain an escaped '/'
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{constants.HeaderRequestID},
		AllowCredentials: !slices.Contains(cfg.AllowedOrigins, "*"),
	}))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	authHandler := handlers.NewAuthHandler(svc.Users)
	userHandler := handlers.NewUserHandler(svc.Users)
	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	teamHandler := handlers.NewTeamHandler(svc.Teams)
	tagHandler := handlers.NewTagHandler(svc.Tags)

	loadTask := middleware.LoadTask(svc.Tasks, "ref")
	loadTeam := middleware.LoadTeam(svc.Teams, "ref")

	r.GET("/health", healthHandler(db))

	// Session routes
	r.POST("/auth", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)

	// User routes
	r.POST("/user", userHandler.Register)
	r.GET("/user/:uid", userHandler.GetUser)
	r.DELETE("/user/:uid", userHandler.DeleteUser)
	r.GET("/users/:uid/tasks", taskHandler.ListUserTasks)

	// Task routes
	tasks := r.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.POST("/generate", taskHandler.GenerateTasks)
		tasks.GET("/:ref", taskHandler.GetTask)
		tasks.PUT("/:ref", loadTask, taskHandler.UpdateTask)
		tasks.DELETE("/:ref", loadTask, taskHandler.DeleteTask)
	}
	r.GET("/team-tasks/:team_id", middleware.LoadTeam(svc.Teams, "team_id"), taskHandler.ListTeamTasks)

	// Team routes
	teams := r.Group("/teams")
	{
		teams.POST("", teamHandler.CreateTeam)
		teams.GET("/:ref", teamHandler.ListUserTeams)
		teams.DELETE("/:ref", loadTeam, teamHandler.DeleteTeam)
		teams.GET("/:ref/members", loadTeam, teamHandler.ListMembers)
		teams.POST("/:ref/members", loadTeam, teamHandler.AddMember)
		teams.DELETE("/:ref/members/:user_id", loadTeam, teamHandler.RemoveMember)
	}

	// Tag routes
	tags := r.Group("/tags")
	{
		tags.GET("", tagHandler.ListTags)
		tags.POST("", tagHandler.CreateTag)
		tags.DELETE("/:tag_id", tagHandler.DeleteTag)
	}

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"message": "Database is unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task board API is running",
		})
	}
}
