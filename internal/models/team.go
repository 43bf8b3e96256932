package models

import "time"

type Team struct {
	TeamID    uint64    `gorm:"column:team_id;primaryKey" json:"team_id"`
	TeamName  string    `gorm:"type:varchar(100);not null" json:"team_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamMember links a user to a team. The pair is the whole row.
type TeamMember struct {
	TeamID uint64 `gorm:"column:team_id;primaryKey;autoIncrement:false" json:"team_id"`
	UserID uint64 `gorm:"column:user_id;primaryKey;autoIncrement:false;index" json:"user_id"`

	// Relations (belongs to both sides)
	Team Team `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
