// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/team-task-board/internal/config"
	"github.com/yukikurage/team-task-board/internal/database"
	"github.com/yukikurage/team-task-board/internal/models"
)

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{
		DBDriver:   "sqlite",
		DBPath:     ":memory:",
		DBLogLevel: "silent",
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user; the uid is derived by the model hook.
func CreateUser(t testing.TB, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTeam inserts a team and memberships for the given users.
func CreateTeam(t testing.TB, db *gorm.DB, name string, members ...*models.User) *models.Team {
	t.Helper()
	team := &models.Team{TeamName: name}
	require.NoError(t, db.Create(team).Error)
	for _, u := range members {
		require.NoError(t, db.Create(&models.TeamMember{TeamID: team.TeamID, UserID: u.UserID}).Error)
	}
	return team
}
