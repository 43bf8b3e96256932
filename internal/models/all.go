package models

// All returns every table model in dependency order, for migrations and test fixtures.
func All() []any {
	return []any{
		&User{},
		&Team{},
		&TeamMember{},
		&Task{},
		&TaskAssignee{},
		&Tag{},
		&TaskTag{},
	}
}
