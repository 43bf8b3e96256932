package database

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/team-task-board/internal/models"
	"gorm.io/gorm"
)

type compositeIndex struct {
	model   any
	name    string
	columns []string
}

// secondaryIndexes covers the board queries that single-column tags do not.
var secondaryIndexes = []compositeIndex{
	{&models.Task{}, "idx_tasks_created_by_team", []string{"created_by", "team_id"}},
	{&models.Task{}, "idx_tasks_team_status", []string{"team_id", "status"}},
}

// AddIndexes creates the composite indexes that are missing. Existence is checked
// through the gorm migrator so it works on every supported driver.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range secondaryIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		quoted := make([]string, len(idx.columns))
		for i, c := range idx.columns {
			quoted[i] = stmt.Quote(c)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			stmt.Quote(idx.name),
			stmt.Quote(stmt.Schema.Table),
			strings.Join(quoted, ", "),
		)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", stmt.Schema.Table, "columns", idx.columns)
	}

	return nil
}

// CaseSensitiveUIDs gives users.uid a binary collation on MySQL, whose default
// utf8mb4 collation folds case. Postgres and sqlite already compare varchar
// case-sensitively.
func CaseSensitiveUIDs(db *gorm.DB) error {
	if db.Dialector.Name() != "mysql" {
		return nil
	}
	sql := "ALTER TABLE `users` MODIFY `uid` varchar(10) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"
	if err := db.Exec(sql).Error; err != nil {
		return fmt.Errorf("failed to set uid collation: %w", err)
	}
	return nil
}
