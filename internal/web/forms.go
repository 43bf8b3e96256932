package web

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/dto"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/utils"
)

var errBadDueDate = errors.New("due date must be YYYY-MM-DD")

// taskForm holds the create form as submitted, for redisplay.
type taskForm struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueDate     string
	TeamID      string
	Assignees   []uint64
	Tags        string
}

func parseTaskForm(c *gin.Context) taskForm {
	return taskForm{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Status:      models.TaskStatus(c.PostForm("status")),
		DueDate:     strings.TrimSpace(c.PostForm("due_date")),
		TeamID:      c.PostForm("team_id"),
		Assignees:   idList(c.PostFormArray("assignees")),
		Tags:        c.PostForm("tags"),
	}
}

func (f taskForm) createRequest(creatorID uint64) (dto.CreateTaskRequest, error) {
	req := dto.CreateTaskRequest{
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		CreatedBy:   creatorID,
		Assignees:   f.Assignees,
		Tags:        f.Tags,
	}
	if f.DueDate != "" {
		due, err := models.ParseDate(f.DueDate)
		if err != nil {
			return req, errBadDueDate
		}
		req.DueDate = &due
	}
	if f.TeamID != "" {
		id, err := utils.ParseID(f.TeamID)
		if err != nil {
			return req, errors.New("unknown team")
		}
		req.TeamID = &id
	}
	return req, nil
}

// parseEditForm reads the edit dialog. The dialog always shows status, tags,
// due date and assignees, so each is sent; an empty due date clears it.
func parseEditForm(c *gin.Context) (dto.UpdateTaskRequest, error) {
	var req dto.UpdateTaskRequest

	if title, ok := c.GetPostForm("title"); ok {
		req.Title = &title
	}
	if desc, ok := c.GetPostForm("description"); ok {
		req.Description = &desc
	}
	status := models.TaskStatus(c.PostForm("status"))
	req.Status = &status

	tags := c.PostForm("tags")
	req.Tags = &tags

	if raw := strings.TrimSpace(c.PostForm("due_date")); raw == "" {
		req.DueDate = dto.Null[models.Date]()
	} else {
		due, err := models.ParseDate(raw)
		if err != nil {
			return req, errBadDueDate
		}
		req.DueDate = dto.Some(due)
	}

	assignees := idList(c.PostFormArray("assignees"))
	req.Assignees = &assignees

	return req, nil
}
