package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		location_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`

	createRoadsQuery := `
	CREATE TABLE IF NOT EXISTS roads (
		from_location BIGINT NOT NULL REFERENCES locations(location_id) ON DELETE CASCADE,
		to_location BIGINT NOT NULL REFERENCES locations(location_id) ON DELETE CASCADE,
		distance INTEGER NOT NULL CHECK (distance >= 0),
		PRIMARY KEY (from_location, to_location)
	);
	`

	createMaterialsQuery := `
	CREATE TABLE IF NOT EXISTS materials (
		material_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`

	createStoragesQuery := `
	CREATE TABLE IF NOT EXISTS storages (
		storage_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		location_id BIGINT NOT NULL UNIQUE REFERENCES locations(location_id)
	);
	`

	createStorageMaterialsQuery := `
	CREATE TABLE IF NOT EXISTS storage_materials (
		storage_id BIGINT NOT NULL REFERENCES storages(storage_id) ON DELETE CASCADE,
		material_id BIGINT NOT NULL REFERENCES materials(material_id),
		used INTEGER NOT NULL CHECK (used >= 0),
		max_amount INTEGER NOT NULL CHECK (max_amount >= 0),
		PRIMARY KEY (storage_id, material_id)
	);
	`

	createCompaniesQuery := `
	CREATE TABLE IF NOT EXISTS companies (
		company_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		location_id BIGINT NOT NULL UNIQUE REFERENCES locations(location_id)
	);
	`

	createCompanyMaterialsQuery := `
	CREATE TABLE IF NOT EXISTS company_materials (
		company_id BIGINT NOT NULL REFERENCES companies(company_id) ON DELETE CASCADE,
		material_id BIGINT NOT NULL REFERENCES materials(material_id),
		amount INTEGER NOT NULL CHECK (amount >= 0),
		PRIMARY KEY (company_id, material_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_roads_to_location
	ON roads(to_location);
	`

	statements := []string{
		createLocationsQuery,
		createRoadsQuery,
		createMaterialsQuery,
		createStoragesQuery,
		createStorageMaterialsQuery,
		createCompaniesQuery,
		createCompanyMaterialsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the database with the network described by a YAML seed file.
// Existing rows with the same keys are overwritten. Parallel roads keep the
// shortest distance.
func SeedFromYAML(ctx context.Context, db *sql.DB, path string) error {
	seed, err := ReadNetworkSeed(path)
	if err != nil {
		return fmt.Errorf("seed network: %w", err)
	}
	// Build once to validate references before touching the database.
	net, err := seed.Network()
	if err != nil {
		return fmt.Errorf("seed network: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed network: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exec := func(what, query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed network: insert %s: %w", what, err)
		}
		return nil
	}

	for _, l := range net.Locations() {
		if err := exec(fmt.Sprintf("location %d", l.ID), `
		INSERT INTO locations (location_id, name) VALUES ($1, $2)
		ON CONFLICT (location_id) DO UPDATE SET name = EXCLUDED.name;
		`, l.ID, l.Name); err != nil {
			return err
		}
	}

	for _, r := range net.Roads() {
		if err := exec(fmt.Sprintf("road %d->%d", r.From, r.To), `
		INSERT INTO roads (from_location, to_location, distance) VALUES ($1, $2, $3)
		ON CONFLICT (from_location, to_location) DO UPDATE
		SET distance = LEAST(roads.distance, EXCLUDED.distance);
		`, r.From, r.To, r.Distance); err != nil {
			return err
		}
	}

	for _, m := range seed.Materials {
		if err := exec(fmt.Sprintf("material %d", m.ID), `
		INSERT INTO materials (material_id, name) VALUES ($1, $2)
		ON CONFLICT (material_id) DO UPDATE SET name = EXCLUDED.name;
		`, m.ID, m.Name); err != nil {
			return err
		}
	}

	for _, s := range net.Storages() {
		if err := exec(fmt.Sprintf("storage %d", s.ID), `
		INSERT INTO storages (storage_id, name, location_id) VALUES ($1, $2, $3)
		ON CONFLICT (storage_id) DO UPDATE
		SET name = EXCLUDED.name, location_id = EXCLUDED.location_id;
		`, s.ID, s.Name, s.LocationID); err != nil {
			return err
		}
		for m, c := range s.Materials {
			if err := exec(fmt.Sprintf("storage %d material %d", s.ID, m), `
			INSERT INTO storage_materials (storage_id, material_id, used, max_amount) VALUES ($1, $2, $3, $4)
			ON CONFLICT (storage_id, material_id) DO UPDATE
			SET used = EXCLUDED.used, max_amount = EXCLUDED.max_amount;
			`, s.ID, m, c.Used, c.Max); err != nil {
				return err
			}
		}
	}

	for _, c := range net.Companies() {
		if err := exec(fmt.Sprintf("company %d", c.ID), `
		INSERT INTO companies (company_id, name, location_id) VALUES ($1, $2, $3)
		ON CONFLICT (company_id) DO UPDATE
		SET name = EXCLUDED.name, location_id = EXCLUDED.location_id;
		`, c.ID, c.Name, c.LocationID); err != nil {
			return err
		}
		for m, amount := range c.Materials {
			if err := exec(fmt.Sprintf("company %d material %d", c.ID, m), `
			INSERT INTO company_materials (company_id, material_id, amount) VALUES ($1, $2, $3)
			ON CONFLICT (company_id, material_id) DO UPDATE SET amount = EXCLUDED.amount;
			`, c.ID, m, amount); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed network: commit tx: %w", err)
	}

	return nil
}
