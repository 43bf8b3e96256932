package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/constants"
	apierrors "github.com/yukikurage/team-task-board/internal/errors"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/services"
	"github.com/yukikurage/team-task-board/internal/utils"
)

// TaskGetter loads one task with its relations.
type TaskGetter interface {
	Get(taskID uint64) (*models.Task, error)
}

// TeamGetter loads one team.
type TeamGetter interface {
	Get(teamID uint64) (*models.Team, error)
}

// LoadTask resolves the numeric task id in the named path parameter and
// stores the task in the context
func LoadTask(tasks TaskGetter, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := utils.ParseID(c.Param(param))
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		task, err := tasks.Get(taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			apierrors.InternalError(c, err)
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// LoadTeam resolves the numeric team id in the named path parameter and
// stores the team in the context
func LoadTeam(teams TeamGetter, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, err := utils.ParseID(c.Param(param))
		if err != nil {
			apierrors.BadRequest(c, "Invalid team ID")
			return
		}

		team, err := teams.Get(teamID)
		if err != nil {
			if errors.Is(err, services.ErrTeamNotFound) {
				apierrors.NotFound(c, "Team not found")
				return
			}
			apierrors.InternalError(c, err)
			return
		}

		c.Set(constants.ContextKeyTeam, team)
		c.Next()
	}
}

// GetTask returns the task stored by LoadTask.
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok
}

// GetTeam returns the team stored by LoadTeam.
func GetTeam(c *gin.Context) (*models.Team, bool) {
	v, exists := c.Get(constants.ContextKeyTeam)
	if !exists {
		return nil, false
	}
	team, ok := v.(*models.Team)
	return team, ok
}
