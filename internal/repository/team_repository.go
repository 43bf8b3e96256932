package repository

import (
	"github.com/yukikurage/team-task-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a team and its memberships in a transaction
func (r *GormTeamRepository) Create(team *models.Team, memberIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}

		members := make([]models.TeamMember, len(memberIDs))
		for i, userID := range memberIDs {
			members[i] = models.TeamMember{TeamID: team.TeamID, UserID: userID}
		}
		return tx.Omit(clause.Associations).Create(&members).Error
	})
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ListByUserID lists all teams a user is a member of
func (r *GormTeamRepository) ListByUserID(userID uint64) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.
		Joins("JOIN team_members ON team_members.team_id = teams.team_id").
		Where("team_members.user_id = ?", userID).
		Order("teams.team_id").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.
		Joins("JOIN team_members ON team_members.user_id = users.user_id").
		Where("team_members.team_id = ?", teamID).
		Order("users.user_id").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(member *models.TeamMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(member).Error
	})
}

// FindMember finds a specific team membership
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(teamID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountMembers counts how many of the given user IDs belong to the team
func (r *GormTeamRepository) CountMembers(teamID uint64, userIDs []uint64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id IN ?", teamID, userIDs).
		Count(&count).Error
	return count, err
}

// Delete deletes a team, its memberships and its tags in a transaction
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var scoped int64
		if err := tx.Model(&models.Task{}).Where("team_id = ?", id).Count(&scoped).Error; err != nil {
			return err
		}
		if scoped > 0 {
			return ErrHasTasks
		}

		teamTags := tx.Model(&models.Tag{}).Select("tag_id").Where("team_id = ?", id)
		if err := tx.Where("tag_id IN (?)", teamTags).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Team{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
