package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/team-task-board/internal/dto"
	apierrors "github.com/yukikurage/team-task-board/internal/errors"
	"github.com/yukikurage/team-task-board/internal/middleware"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/services"
	"github.com/yukikurage/team-task-board/internal/utils"
)

// TaskHandler serves task CRUD, the per-owner and per-team boards and AI drafting.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns every task, optionally filtered by ?status=
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var input services.ListTasksInput
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseTaskStatus(raw)
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
		input.Status = &status
	}

	tasks, err := h.taskService.List(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask resolves /tasks/:ref. A numeric ref names a task; when no task has
// that id, or the ref is not numeric, it is read as a uid and the owner's
// tasks are returned.
func (h *TaskHandler) GetTask(c *gin.Context) {
	ref := c.Param("ref")

	if taskID, err := utils.ParseID(ref); err == nil {
		task, err := h.taskService.Get(taskID)
		if err == nil {
			c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
			return
		}
		if !errors.Is(err, services.ErrTaskNotFound) {
			respondTaskError(c, err)
			return
		}
	}

	tasks, err := h.taskService.ListPersonal(ref, c.Query("scope") == "all")
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "No task or user matches "+ref)
			return
		}
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// ListUserTasks returns the tasks of the user with the uid in the path.
func (h *TaskHandler) ListUserTasks(c *gin.Context) {
	tasks, err := h.taskService.ListPersonal(c.Param("uid"), c.Query("scope") == "all")
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// ListTeamTasks returns the tasks of the team loaded by middleware.LoadTeam.
func (h *TaskHandler) ListTeamTasks(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, errors.New("team not found in context"))
		return
	}

	tasks, err := h.taskService.ListTeam(team.TeamID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// CreateTask creates a task. The creator is created_by from the body, or the
// session user when the body leaves it out.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	creatorID := req.CreatedBy
	if creatorID == 0 {
		userID, ok := middleware.SessionUserID(c)
		if !ok {
			apierrors.BadRequest(c, "created_by is required without a session")
			return
		}
		creatorID = userID
	}

	task, err := h.taskService.Create(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		CreatorID:   creatorID,
		TeamID:      req.TeamID,
		AssigneeIDs: req.Assignees,
		Tags:        req.Tags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to the task loaded by middleware.LoadTask.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, errors.New("task not found in context"))
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeIDs: req.Assignees,
		Tags:        req.Tags,
	}
	if req.DueDate.Set {
		input.DueDate = req.DueDate.Value
		input.ClearDueDate = req.DueDate.Value == nil
	}
	if req.TeamID.Set {
		input.TeamID = req.TeamID.Value
		input.ClearTeam = req.TeamID.Value == nil
	}

	updated, err := h.taskService.Update(task.TaskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes the task loaded by middleware.LoadTask.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, errors.New("task not found in context"))
		return
	}

	if err := h.taskService.Delete(task.TaskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

// GenerateTasks drafts tasks from free text. Nothing is stored.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:   req.Text,
		TeamID: req.TeamID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	resp := dto.GenerateTasksResponse{Tasks: make([]dto.DraftDTO, 0, len(drafts))}
	for _, d := range drafts {
		resp.Tasks = append(resp.Tasks, dto.DraftDTO{
			Title:       d.Title,
			Description: d.Description,
			DueDate:     d.DueDate,
			Tags:        d.Tags,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrTagNameRequired),
		errors.Is(err, services.ErrTagNameTooLong),
		errors.Is(err, services.ErrTagNameHasComma),
		errors.Is(err, services.ErrAITextRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY.")
	case errors.Is(err, services.ErrAIUpstream),
		errors.Is(err, services.ErrAITooManyDrafts):
		apierrors.BadGateway(c, err.Error())
	default:
		apierrors.InternalError(c, err)
	}
}
