package dto

import (
	"time"

	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	TaskID      uint64            `json:"task_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *models.Date      `json:"due_date"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CreatedBy   uint64            `json:"created_by"`
	TeamID      *uint64           `json:"team_id"`
	Creator     *UserDTO          `json:"creator,omitempty"`
	Team        *TeamDTO          `json:"team,omitempty"`
	Assignees   []UserDTO         `json:"assignees"`
	Tags        []string          `json:"tags"`
}

// TagList renders the tags the way task forms accept them.
func (t TaskDTO) TagList() string {
	return utils.JoinTagList(t.Tags)
}

// IsAssigned reports whether the user is among the assignees.
func (t TaskDTO) IsAssigned(userID uint64) bool {
	for _, a := range t.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// CreateTaskRequest is the body of POST /tasks. CreatedBy falls back to the
// session user. Tags is a comma-separated list.
type CreateTaskRequest struct {
	Title       string            `json:"title" binding:"required,max=200"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status,omitempty"`
	DueDate     *models.Date      `json:"due_date,omitempty"`
	CreatedBy   uint64            `json:"created_by,omitempty"`
	TeamID      *uint64           `json:"team_id,omitempty"`
	Assignees   []uint64          `json:"assignees,omitempty"`
	Tags        string            `json:"tags,omitempty"`
}

// UpdateTaskRequest is the body of PUT /tasks/:ref. Absent fields are left
// unchanged; due_date and team_id accept null to clear them; tags replaces
// the whole set and "" clears it.
type UpdateTaskRequest struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *models.TaskStatus    `json:"status,omitempty"`
	DueDate     Optional[models.Date] `json:"due_date,omitzero"`
	TeamID      Optional[uint64]      `json:"team_id,omitzero"`
	Assignees   *[]uint64             `json:"assignees,omitempty"`
	Tags        *string               `json:"tags,omitempty"`
}

// GenerateTasksRequest is the body of POST /tasks/generate
type GenerateTasksRequest struct {
	Text   string  `json:"text" binding:"required"`
	TeamID *uint64 `json:"team_id,omitempty"`
}

// DraftDTO is an AI-suggested task that has not been stored
type DraftDTO struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     *models.Date `json:"due_date"`
	Tags        []string     `json:"tags"`
}

// GenerateTasksResponse wraps the drafts
type GenerateTasksResponse struct {
	Tasks []DraftDTO `json:"tasks"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		TaskID:      task.TaskID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CreatedBy:   task.CreatedBy,
		TeamID:      task.TeamID,
		Assignees:   make([]UserDTO, 0, len(task.Assignees)),
		Tags:        make([]string, 0, len(task.Tags)),
	}

	// Include creator if preloaded
	if task.Creator.UserID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include team if preloaded
	if task.Team != nil && task.Team.TeamID != 0 {
		team := ToTeamDTO(*task.Team)
		dto.Team = &team
	}

	for _, a := range task.Assignees {
		user := a.User
		if user.UserID == 0 {
			user.UserID = a.UserID
		}
		dto.Assignees = append(dto.Assignees, ToUserDTO(user))
	}
	for _, t := range task.Tags {
		dto.Tags = append(dto.Tags, t.Tag.Name)
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}
