package models

// All lists every persisted model, in dependency order, for schema bootstrapping
// on drivers that do not run the goose migrations.
func All() []any {
	return []any{
		&Item{},
		&Order{},
		&OrderItem{},
		&IDSequence{},
		&InventoryMovement{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
