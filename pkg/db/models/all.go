package models

// All lists every persisted model in dependency order, for gorm AutoMigrate.
func All() []any {
	return []any{
		&AdminUser{},
		&Category{},
		&Color{},
		&Size{},
		&Product{},
		&ProductColor{},
		&ProductImage{},
		&SizeStock{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
	}
}
