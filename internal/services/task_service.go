package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/team-task-board/internal/ai"
	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/models"
	"github.com/yukikurage/team-task-board/internal/repository"
	"github.com/yukikurage/team-task-board/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleTooLong           = fmt.Errorf("title must be at most %d characters", constants.MaxTitleLength)
	ErrInvalidStatus          = errors.New(`status must be one of "Todo", "In Progress", "Done"`)
	ErrInvalidTaskAssignee    = errors.New("one or more assignees do not exist or are not members of the task's team")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAITextRequired         = errors.New("text is required")
	ErrAITooManyDrafts        = fmt.Errorf("AI returned more than %d tasks", constants.MaxDraftTasks)
	ErrAIUpstream             = errors.New("AI service request failed")
)

// TaskDrafter produces task drafts from free text.
type TaskDrafter interface {
	DraftTasks(ctx context.Context, req ai.DraftRequest) ([]ai.Draft, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
	drafter  TaskDrafter
	now      func() time.Time
}

// NewTaskService creates a new TaskService. drafter may be nil, which
// disables GenerateTasks.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, teamRepo repository.TeamRepository, drafter TaskDrafter) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		teamRepo: teamRepo,
		drafter:  drafter,
		now:      time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueDate     *models.Date
	CreatorID   uint64
	TeamID      *uint64
	AssigneeIDs []uint64
	// Tags is a comma-separated list
	Tags string
}

// UpdateTaskInput represents a partial update. Nil fields are left alone.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	DueDate      *models.Date
	ClearDueDate bool
	TeamID       *uint64
	ClearTeam    bool
	AssigneeIDs  *[]uint64
	// Tags replaces the tag set; "" clears it
	Tags *string
}

// ListTasksInput represents filters for the flat task listing
type ListTasksInput struct {
	Status *models.TaskStatus
}

// Get returns a task with related data
func (s *TaskService) Get(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// List returns every task, optionally filtered by status
func (s *TaskService) List(input ListTasksInput) ([]models.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{Status: input.Status})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListPersonal returns the personal tasks of the user with this uid. With
// includeTeam it also returns team tasks the user created or is assigned to.
func (s *TaskService) ListPersonal(uid string, includeTeam bool) ([]models.Task, error) {
	user, err := s.userRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	filter := repository.TaskFilter{PersonalOwnerID: &user.UserID}
	if includeTeam {
		filter = repository.TaskFilter{InvolvedUserID: &user.UserID}
	}

	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListTeam returns the tasks scoped to a team
func (s *TaskService) ListTeam(teamID uint64) ([]models.Task, error) {
	if err := s.ensureTeam(teamID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{TeamID: &teamID})
	if err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}
	return tasks, nil
}

// Create creates a new task with its assignees and tags
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, err := s.userRepo.FindByID(input.CreatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find creator: %w", err)
	}
	if input.TeamID != nil {
		if err := s.ensureTeam(*input.TeamID); err != nil {
			return nil, err
		}
	}

	assigneeIDs := utils.UniqueIDs(input.AssigneeIDs)
	if err := s.validateAssignees(input.TeamID, assigneeIDs); err != nil {
		return nil, err
	}

	tagNames, err := parseTags(input.Tags)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
		CreatedBy:   input.CreatorID,
		TeamID:      input.TeamID,
	}

	if err := s.taskRepo.Create(task, assigneeIDs, tagNames); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrInvalidTaskAssignee
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.Get(task.TaskID)
}

// Update applies a partial update. Tags and assignees, when given, replace
// the current sets.
func (s *TaskService) Update(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	teamChanged := false
	if input.ClearTeam {
		teamChanged = task.TeamID != nil
		task.TeamID = nil
	} else if input.TeamID != nil {
		if err := s.ensureTeam(*input.TeamID); err != nil {
			return nil, err
		}
		teamChanged = task.TeamID == nil || *task.TeamID != *input.TeamID
		task.TeamID = input.TeamID
	}
	task.Team = nil

	var assoc repository.TaskAssociations
	switch {
	case input.AssigneeIDs != nil:
		ids := utils.UniqueIDs(*input.AssigneeIDs)
		if err := s.validateAssignees(task.TeamID, ids); err != nil {
			return nil, err
		}
		assoc.AssigneeIDs = &ids
	case teamChanged:
		// current assignees must still qualify under the new team
		ids := make([]uint64, len(task.Assignees))
		for i, a := range task.Assignees {
			ids[i] = a.UserID
		}
		if err := s.validateAssignees(task.TeamID, ids); err != nil {
			return nil, err
		}
	}

	if input.Tags != nil {
		names, err := parseTags(*input.Tags)
		if err != nil {
			return nil, err
		}
		assoc.TagNames = &names
	}

	if err := s.taskRepo.Update(task, assoc); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrInvalidTaskAssignee
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.Get(task.TaskID)
}

// Delete deletes a task. Its tags stay available in their scope.
func (s *TaskService) Delete(taskID uint64) error {
	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// GenerateTasksInput represents input for AI task drafting
type GenerateTasksInput struct {
	Text   string
	TeamID *uint64
}

// GenerateTasks asks the drafter for tasks. Drafts are returned, not stored.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]ai.Draft, error) {
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrAITextRequired
	}

	req := ai.DraftRequest{Text: text, Today: models.DateOf(s.now())}
	if input.TeamID != nil {
		team, err := s.teamRepo.FindByID(*input.TeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to find team: %w", err)
		}
		req.TeamName = team.TeamName
	}

	drafts, err := s.drafter.DraftTasks(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUpstream, err)
	}
	if len(drafts) > constants.MaxDraftTasks {
		return nil, ErrAITooManyDrafts
	}

	valid := make([]ai.Draft, 0, len(drafts))
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		if draft.DueDate != nil && draft.DueDate.Before(req.Today) {
			draft.DueDate = nil
		}
		draft.Tags = utils.ParseTagList(strings.Join(draft.Tags, ","))
		valid = append(valid, draft)
	}

	return valid, nil
}

func (s *TaskService) ensureTeam(teamID uint64) error {
	if _, err := s.teamRepo.FindByID(teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}
	return nil
}

// validateAssignees checks that every id is a user and, for team tasks, a
// member of the team.
func (s *TaskService) validateAssignees(teamID *uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	var (
		count int64
		err   error
	)
	if teamID != nil {
		count, err = s.teamRepo.CountMembers(*teamID, userIDs)
	} else {
		count, err = s.userRepo.CountByIDs(userIDs)
	}
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrInvalidTaskAssignee
	}
	return nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrTitleRequired
	}
	if len(title) > constants.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func parseTags(raw string) ([]string, error) {
	names := utils.ParseTagList(raw)
	for _, name := range names {
		if err := validateTagName(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}
