package database

import (
	"gorm.io/gorm"
)

// TaskRelations preloads everything a task response shows.
func TaskRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator").
		Preload("Team").
		Preload("Assignees", func(db *gorm.DB) *gorm.DB { return db.Order("task_assignees.user_id") }).
		Preload("Assignees.User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("task_tags.tag_id") }).
		Preload("Tags.Tag")
}

// PersonalTasks selects tasks created by the user that have no team.
func PersonalTasks(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.created_by = ? AND tasks.team_id IS NULL", userID)
	}
}

// InvolvingUser selects tasks the user created or is assigned to, in any scope.
func InvolvingUser(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		assigned := db.Session(&gorm.Session{NewDB: true}).
			Table("task_assignees").
			Select("1").
			Where("task_assignees.task_id = tasks.task_id AND task_assignees.user_id = ?", userID)
		return db.Where("tasks.created_by = ? OR EXISTS (?)", userID, assigned)
	}
}

// TeamTasks selects tasks scoped to the team.
func TeamTasks(teamID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.team_id = ?", teamID)
	}
}

// BoardOrder lists tasks by due date (undated last), then newest first.
func BoardOrder(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC, tasks.task_id DESC")
}
