package repository

import (
	"errors"

	"github.com/yukikurage/team-task-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Create creates a new tag
func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(tag).Error
	})
}

// FindByID finds a tag by ID
func (r *GormTagRepository) FindByID(id uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName finds a tag by name in exactly the given scope
func (r *GormTagRepository) FindByName(name string, userID, teamID *uint64) (*models.Tag, error) {
	return findTag(r.db, name, userID, teamID)
}

// List lists tags in name order
func (r *GormTagRepository) List(filter TagFilter) ([]models.Tag, error) {
	var tags []models.Tag

	query := r.db.Model(&models.Tag{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}

	if err := query.Order("name, tag_id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Delete deletes a tag and its task links
func (r *GormTagRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func findTag(db *gorm.DB, name string, userID, teamID *uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := db.Where("name = ? AND scope_key = ?", name, models.TagScopeKey(userID, teamID)).
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func findOrCreateTag(tx *gorm.DB, name string, userID, teamID *uint64) (*models.Tag, error) {
	tag, err := findTag(tx, name, userID, teamID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = &models.Tag{Name: name, UserID: userID, TeamID: teamID}
	if err := tx.Omit(clause.Associations).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}
