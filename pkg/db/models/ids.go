package models

import "github.com/google/uuid"

// assignID fills a missing primary key so rows can be created on engines
// without a uuid default (sqlite in tests and local runs).
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists the settlement tables in dependency order, for gorm AutoMigrate on sqlite.
func All() []any {
	return []any{
		&ResellerLevel{},
		&Account{},
		&Product{},
		&CartItem{},
		&PosSession{},
		&Order{},
		&OrderItem{},
		&Commission{},
		&OutboxEvent{},
	}
}
