package repository

import (
	"github.com/yukikurage/team-task-board/internal/database"
	"github.com/yukikurage/team-task-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task with its assignees and tags
func (r *GormTaskRepository) Create(task *models.Task, assigneeIDs []uint64, tagNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		if err := replaceAssignees(tx, task.TaskID, assigneeIDs); err != nil {
			return err
		}
		return replaceTags(tx, task, tagNames)
	})
}

// FindByID finds a task by ID with every relation the API shows
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Scopes(database.TaskRelations).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	switch {
	case filter.PersonalOwnerID != nil:
		query = query.Scopes(database.PersonalTasks(*filter.PersonalOwnerID))
	case filter.InvolvedUserID != nil:
		query = query.Scopes(database.InvolvingUser(*filter.InvolvedUserID))
	case filter.TeamID != nil:
		query = query.Scopes(database.TeamTasks(*filter.TeamID))
	}

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	if err := query.Scopes(database.TaskRelations, database.BoardOrder).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task and replaces the associations the caller set
func (r *GormTaskRepository) Update(task *models.Task, assoc TaskAssociations) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		if assoc.AssigneeIDs != nil {
			if err := replaceAssignees(tx, task.TaskID, *assoc.AssigneeIDs); err != nil {
				return err
			}
		}
		if assoc.TagNames != nil {
			if err := replaceTags(tx, task, *assoc.TagNames); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a task and its join rows
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func replaceAssignees(tx *gorm.DB, taskID uint64, userIDs []uint64) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	assignees := make([]models.TaskAssignee, len(userIDs))
	for i, userID := range userIDs {
		assignees[i] = models.TaskAssignee{TaskID: taskID, UserID: userID}
	}
	return tx.Omit(clause.Associations).Create(&assignees).Error
}

// replaceTags makes names the exact tag set of the task. Detached tags stay in
// the tags table; missing ones are created in the task's scope.
func replaceTags(tx *gorm.DB, task *models.Task, names []string) error {
	if err := tx.Where("task_id = ?", task.TaskID).Delete(&models.TaskTag{}).Error; err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	userID, teamID := TagScopeOf(task)
	links := make([]models.TaskTag, 0, len(names))
	for _, name := range names {
		tag, err := findOrCreateTag(tx, name, userID, teamID)
		if err != nil {
			return err
		}
		links = append(links, models.TaskTag{TaskID: task.TaskID, TagID: tag.TagID})
	}
	return tx.Omit(clause.Associations).Create(&links).Error
}

// TagScopeOf returns the namespace new tags of a task belong to: the team for
// team tasks, the creator otherwise.
func TagScopeOf(task *models.Task) (userID, teamID *uint64) {
	if task.TeamID != nil {
		id := *task.TeamID
		return nil, &id
	}
	id := task.CreatedBy
	return &id, nil
}
