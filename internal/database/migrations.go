package database

import (
	"fmt"

	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// queryIndexes back the visibility query, team cascades and membership joins.
var queryIndexes = []index{
	{"todo", "idx_todo_user_id", "user_id"},
	{"todo", "idx_todo_team_id", "team_id"},
	{"todo", "idx_todo_status_target_at", "status, target_at"},
	{"team_members", "idx_team_members_user_id", "user_id"},
}

// AddIndexes creates the query indexes that are missing.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range queryIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// MigrateDatabase runs the schema migration followed by index creation.
func MigrateDatabase(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	return nil
}
