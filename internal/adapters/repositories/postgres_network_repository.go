package repositories

import (
	"context"
	"database/sql"
	"disposal-route-service/internal/domain"
	"disposal-route-service/internal/platform/obs"
	"disposal-route-service/internal/ports"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes that mean the transaction lost a race and may be retried.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Postgres-backed implementation of the NetworkStore port. Every call runs in
// its own REPEATABLE READ transaction; a serialization failure surfaces as
// ports.ErrConflict.
type PostgresNetworkRepository struct{ DB *sql.DB }

func NewPostgresNetworkRepository(db *sql.DB) *PostgresNetworkRepository {
	return &PostgresNetworkRepository{DB: db}
}

func (p *PostgresNetworkRepository) View(ctx context.Context, fn func(net *domain.Network) error) (err error) {
	defer obs.Time(ctx, "network.repository.View")(&err)

	if p.DB == nil {
		return errors.New("view network: DB is nil")
	}

	tx, err := p.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("view network: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	net, err := loadNetwork(ctx, tx)
	if err != nil {
		return fmt.Errorf("view network: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("view network: commit tx: %w", err)
	}

	return fn(net)
}

func (p *PostgresNetworkRepository) Update(ctx context.Context, fn func(net *domain.Network) (domain.LedgerDelta, error)) (err error) {
	defer obs.Time(ctx, "network.repository.Update")(&err)

	if p.DB == nil {
		return errors.New("update network: DB is nil")
	}

	tx, err := p.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("update network: begin tx: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	net, err := loadNetwork(ctx, tx)
	if err != nil {
		return fmt.Errorf("update network: %w", classify(err))
	}

	delta, err := fn(net)
	if err != nil {
		return err
	}
	if delta.Empty() {
		return nil
	}

	if err := applyDelta(ctx, tx, delta); err != nil {
		return fmt.Errorf("update network: %w", classify(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update network: commit tx: %w", classify(err))
	}

	return nil
}

// classify marks retryable Postgres failures with ports.ErrConflict.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return fmt.Errorf("%w: %w", ports.ErrConflict, err)
		}
	}
	return err
}

func applyDelta(ctx context.Context, tx *sql.Tx, delta domain.LedgerDelta) error {
	for _, u := range delta.Storages {
		res, err := tx.ExecContext(ctx, `
		UPDATE storage_materials
		SET used = $3
		WHERE storage_id = $1 AND material_id = $2;
		`, u.StorageID, u.Material, u.Used)
		if err != nil {
			return fmt.Errorf("apply delta: storage %d material %d: %w", u.StorageID, u.Material, err)
		}
		if err := expectOneRow(res); err != nil {
			return fmt.Errorf("apply delta: storage %d material %d: %w", u.StorageID, u.Material, err)
		}
	}

	for _, u := range delta.Companies {
		res, err := tx.ExecContext(ctx, `
		UPDATE company_materials
		SET amount = $3
		WHERE company_id = $1 AND material_id = $2;
		`, u.CompanyID, u.Material, u.Amount)
		if err != nil {
			return fmt.Errorf("apply delta: company %d material %d: %w", u.CompanyID, u.Material, err)
		}
		if err := expectOneRow(res); err != nil {
			return fmt.Errorf("apply delta: company %d material %d: %w", u.CompanyID, u.Material, err)
		}
	}

	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return domain.ErrUnknownLedgerRecord
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadNetwork reads the whole network inside the caller's transaction.
func loadNetwork(ctx context.Context, q queryer) (*domain.Network, error) {
	net := domain.NewNetwork()

	err := eachRow(ctx, q, "locations", `
	SELECT location_id, name FROM locations ORDER BY location_id;
	`, func(rows *sql.Rows) error {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return err
		}
		return net.AddLocation(l)
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(ctx, q, "roads", `
	SELECT from_location, to_location, distance FROM roads ORDER BY from_location, to_location;
	`, func(rows *sql.Rows) error {
		var r domain.Road
		if err := rows.Scan(&r.From, &r.To, &r.Distance); err != nil {
			return err
		}
		return net.AddRoad(r)
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(ctx, q, "materials", `
	SELECT material_id, name FROM materials ORDER BY material_id;
	`, func(rows *sql.Rows) error {
		var m domain.Material
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return err
		}
		return net.AddMaterial(m)
	})
	if err != nil {
		return nil, err
	}

	storages := map[domain.StorageID]*domain.Storage{}
	var storageOrder []domain.StorageID
	err = eachRow(ctx, q, "storages", `
	SELECT storage_id, name, location_id FROM storages ORDER BY storage_id;
	`, func(rows *sql.Rows) error {
		s := &domain.Storage{Materials: map[domain.MaterialID]domain.Capacity{}}
		if err := rows.Scan(&s.ID, &s.Name, &s.LocationID); err != nil {
			return err
		}
		storages[s.ID] = s
		storageOrder = append(storageOrder, s.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(ctx, q, "storage_materials", `
	SELECT storage_id, material_id, used, max_amount FROM storage_materials;
	`, func(rows *sql.Rows) error {
		var id domain.StorageID
		var m domain.MaterialID
		var c domain.Capacity
		if err := rows.Scan(&id, &m, &c.Used, &c.Max); err != nil {
			return err
		}
		if s, ok := storages[id]; ok {
			s.Materials[m] = c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, id := range storageOrder {
		if err := net.AttachStorage(storages[id]); err != nil {
			return nil, fmt.Errorf("load network: %w", err)
		}
	}

	companies := map[domain.CompanyID]*domain.Company{}
	var companyOrder []domain.CompanyID
	err = eachRow(ctx, q, "companies", `
	SELECT company_id, name, location_id FROM companies ORDER BY company_id;
	`, func(rows *sql.Rows) error {
		c := &domain.Company{Materials: map[domain.MaterialID]int{}}
		if err := rows.Scan(&c.ID, &c.Name, &c.LocationID); err != nil {
			return err
		}
		companies[c.ID] = c
		companyOrder = append(companyOrder, c.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(ctx, q, "company_materials", `
	SELECT company_id, material_id, amount FROM company_materials;
	`, func(rows *sql.Rows) error {
		var id domain.CompanyID
		var m domain.MaterialID
		var amount int
		if err := rows.Scan(&id, &m, &amount); err != nil {
			return err
		}
		if c, ok := companies[id]; ok {
			c.Materials[m] = amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, id := range companyOrder {
		if err := net.AttachCompany(companies[id]); err != nil {
			return nil, fmt.Errorf("load network: %w", err)
		}
	}

	return net, nil
}

func eachRow(ctx context.Context, q queryer, table, query string, scan func(rows *sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("load network: query %s table: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("load network: scan %s row: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load network: %s row iteration: %w", table, err)
	}
	return nil
}
