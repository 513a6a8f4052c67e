package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"petclinic/internal/domain/owners"
)

// El DDL se mantiene en el subconjunto común de Postgres y SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS types (
		id   INTEGER PRIMARY KEY,
		name VARCHAR(80) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS owners (
		id         VARCHAR(36) PRIMARY KEY,
		first_name VARCHAR(30) NOT NULL,
		last_name  VARCHAR(30) NOT NULL,
		address    VARCHAR(255) NOT NULL,
		city       VARCHAR(80) NOT NULL,
		telephone  VARCHAR(20) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_owners_last_name ON owners (last_name)`,
	`CREATE TABLE IF NOT EXISTS pets (
		id         VARCHAR(36) PRIMARY KEY,
		owner_id   VARCHAR(36) NOT NULL REFERENCES owners (id),
		name       VARCHAR(30) NOT NULL,
		birth_date DATE NOT NULL,
		type_id    INTEGER NOT NULL REFERENCES types (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pets_owner_id ON pets (owner_id)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id          VARCHAR(36) PRIMARY KEY,
		pet_id      VARCHAR(36) NOT NULL REFERENCES pets (id),
		visit_date  DATE NOT NULL,
		description VARCHAR(255) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_pet_id ON visits (pet_id)`,
}

// Migrate crea las tablas (idempotente) y siembra el catálogo de tipos.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}

	for _, t := range owners.DefaultPetTypes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO types (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			t.ID, t.Name,
		); err != nil {
			return fmt.Errorf("sqlstore: seed type %s: %w", t.Name, err)
		}
	}

	return tx.Commit()
}
