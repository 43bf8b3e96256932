package repository

import (
	"errors"

	"github.com/yukikurage/team-task-board/internal/models"
)

// ErrHasTasks is returned when a delete is restricted by tasks that still
// reference the row.
var ErrHasTasks = errors.New("repository: tasks still reference this row")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user; the uid is derived on insert
	Create(user *models.User) error

	// FindByID finds a user by surrogate key
	FindByID(id uint64) (*models.User, error)

	// FindByUID finds a user by derived uid
	FindByUID(uid string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ids []uint64) (int64, error)

	// Delete removes a user with memberships, assignments and user-scoped tags.
	// It fails with ErrHasTasks while the user created any task.
	Delete(id uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a team and its initial memberships atomically
	Create(team *models.Team, memberIDs []uint64) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// ListByUserID lists the teams a user is a member of
	ListByUserID(userID uint64) ([]models.Team, error)

	// ListMembers lists the users of a team ordered by user id
	ListMembers(teamID uint64) ([]models.User, error)

	// AddMember adds a member to a team
	AddMember(member *models.TeamMember) error

	// FindMember finds a specific team membership
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// RemoveMember removes a membership
	RemoveMember(teamID, userID uint64) error

	// CountMembers counts how many of the given user IDs are members of the team
	CountMembers(teamID uint64, userIDs []uint64) (int64, error)

	// Delete removes a team with its memberships and team-scoped tags.
	// It fails with ErrHasTasks while any task is scoped to the team.
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task with its assignees and tags in one transaction
	Create(task *models.Task, assigneeIDs []uint64, tagNames []string) error

	// FindByID finds a task with creator, team, assignees and tags loaded
	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks matching the filter in board order
	List(filter TaskFilter) ([]models.Task, error)

	// Update saves the task columns and, when set, replaces assignees and tags
	Update(task *models.Task, assoc TaskAssociations) error

	// Delete removes a task and its join rows; tags themselves stay
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks.
// PersonalOwnerID, InvolvedUserID and TeamID are mutually exclusive.
type TaskFilter struct {
	Status          *models.TaskStatus
	PersonalOwnerID *uint64
	InvolvedUserID  *uint64
	TeamID          *uint64
}

// TaskAssociations carries replacement sets for an update. A nil field
// leaves that association untouched; an empty slice clears it.
type TaskAssociations struct {
	AssigneeIDs *[]uint64
	TagNames    *[]string
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	// Create creates a tag
	Create(tag *models.Tag) error

	// FindByID finds a tag by ID
	FindByID(id uint64) (*models.Tag, error)

	// FindByName finds a tag by name within one scope
	FindByName(name string, userID, teamID *uint64) (*models.Tag, error)

	// List lists tags, optionally narrowed to a user scope and/or a team scope
	List(filter TagFilter) ([]models.Tag, error)

	// Delete removes a tag and detaches it from every task
	Delete(id uint64) error
}

// TagFilter narrows tag listings. Empty means every tag.
type TagFilter struct {
	UserID *uint64
	TeamID *uint64
}
