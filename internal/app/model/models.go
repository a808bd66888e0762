package model

// All lists every persisted model, in dependency order, for migrations and test databases.
func All() []interface{} {
	return []interface{}{
		&Establishment{},
		&Rating{},
		&Account{},
		&Admin{},
		&Favorite{},
		&Picture{},
		&Menu{},
		&Cuisine{},
	}
}
