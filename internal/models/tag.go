package models

import (
	"strconv"

	"gorm.io/gorm"
)

// Tag is a label in either a user's or a team's namespace.
//
// (name, user_id, team_id) is unique. SQL unique indexes let NULLs repeat, so
// ScopeKey folds both scope columns into one non-null value and carries a
// second unique index with name; that one also rejects duplicates when a side
// is NULL.
type Tag struct {
	TagID    uint64  `gorm:"column:tag_id;primaryKey" json:"tag_id"`
	Name     string  `gorm:"type:varchar(50);not null;uniqueIndex:uix_tag_name_user_team,priority:1;uniqueIndex:uix_tag_name_scope,priority:1" json:"name"`
	UserID   *uint64 `gorm:"column:user_id;uniqueIndex:uix_tag_name_user_team,priority:2" json:"user_id"`
	TeamID   *uint64 `gorm:"column:team_id;uniqueIndex:uix_tag_name_user_team,priority:3" json:"team_id"`
	ScopeKey string  `gorm:"column:scope_key;type:varchar(64);not null;uniqueIndex:uix_tag_name_scope,priority:2" json:"-"`

	// belongs-to, resolved from the UserID/TeamID names (see Task.Team)
	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Team *Team `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeSave(tx *gorm.DB) error {
	t.ScopeKey = TagScopeKey(t.UserID, t.TeamID)
	return nil
}

// TagScopeKey renders a scope as "u:<id>|t:<id>" with "-" for an absent side.
func TagScopeKey(userID, teamID *uint64) string {
	return "u:" + optionalID(userID) + "|t:" + optionalID(teamID)
}

func optionalID(id *uint64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatUint(*id, 10)
}

// TaskTag attaches a tag to a task.
type TaskTag struct {
	TaskID uint64 `gorm:"column:task_id;primaryKey;autoIncrement:false" json:"task_id"`
	TagID  uint64 `gorm:"column:tag_id;primaryKey;autoIncrement:false;index" json:"tag_id"`

	Tag Tag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
}

func (TaskTag) TableName() string {
	return "task_tags"
}
