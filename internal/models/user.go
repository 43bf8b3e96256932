package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/team-task-board/internal/identity"
)

type User struct {
	UserID    uint64    `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	UID       string    `gorm:"column:uid;type:varchar(10);uniqueIndex;not null" json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate fills in the uid from (email, username) when the caller did not.
// The uid is never recomputed afterwards.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UID != "" {
		return nil
	}
	uid, err := identity.DeriveUID(u.Email, u.Username)
	if err != nil {
		return err
	}
	u.UID = uid
	return nil
}
