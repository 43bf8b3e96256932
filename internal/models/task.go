package models

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "Todo"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// Valid reports whether s is one of the three literal statuses.
// Any status may follow any other; there is no transition table.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q: must be one of %q, %q, %q",
			s, TaskStatusTodo, TaskStatusInProgress, TaskStatusDone)
	}
	return status, nil
}

type Task struct {
	TaskID      uint64     `gorm:"column:task_id;primaryKey" json:"task_id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'Todo';index" json:"status"`
	DueDate     *Date      `gorm:"index" json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CreatedBy   uint64     `gorm:"column:created_by;not null;index" json:"created_by"`
	TeamID      *uint64    `gorm:"column:team_id;index" json:"team_id"`

	// Relations. Team is resolved as belongs-to from the TeamID name; an explicit
	// foreignKey:TeamID also matches Team.TeamID and turns into has-one.
	Creator   User           `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT" json:"creator,omitempty"`
	Team      *Team          `gorm:"constraint:OnDelete:RESTRICT" json:"team,omitempty"`
	Assignees []TaskAssignee `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignees,omitempty"`
	Tags      []TaskTag      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// IsPersonal reports whether the task has no team scope.
func (t Task) IsPersonal() bool {
	return t.TeamID == nil
}

// TaskAssignee records that a user is assigned to a task.
type TaskAssignee struct {
	TaskID uint64 `gorm:"column:task_id;primaryKey;autoIncrement:false" json:"task_id"`
	UserID uint64 `gorm:"column:user_id;primaryKey;autoIncrement:false;index" json:"user_id"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (TaskAssignee) TableName() string {
	return "task_assignees"
}
