package repositories

import (
	"context"
	"disposal-route-service/internal/domain"
	"disposal-route-service/internal/ports"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyMarksRetryableErrors(t *testing.T) {
	for _, code := range []string{"40001", "40P01"} {
		err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
		got := classify(err)
		if !errors.Is(got, ports.ErrConflict) {
			t.Fatalf("code %s: err = %v, want ErrConflict", code, got)
		}
		var pgErr *pgconn.PgError
		if !errors.As(got, &pgErr) {
			t.Fatalf("code %s: original error lost", code)
		}
	}
}

func TestClassifyLeavesOtherErrors(t *testing.T) {
	err := &pgconn.PgError{Code: "23505"}
	if errors.Is(classify(err), ports.ErrConflict) {
		t.Fatal("unique violation must not be retried")
	}
	if errors.Is(classify(errors.New("plain")), ports.ErrConflict) {
		t.Fatal("plain error must not be retried")
	}
}

func TestPostgresRepositoryRequiresDB(t *testing.T) {
	repo := NewPostgresNetworkRepository(nil)
	if err := repo.View(context.Background(), func(*domain.Network) error { return nil }); err == nil {
		t.Fatal("expected error from View without DB")
	}
	err := repo.Update(context.Background(), func(*domain.Network) (domain.LedgerDelta, error) {
		return domain.LedgerDelta{}, nil
	})
	if err == nil {
		t.Fatal("expected error from Update without DB")
	}
}

func newMockRepository(t *testing.T) (*PostgresNetworkRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresNetworkRepository(db), mock
}

// expectNetworkLoad queues the reads of a two-location network: company Acme
// at Yard holding 4 Bio, storage North at Depot with Bio 2/10.
func expectNetworkLoad(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM locations ORDER BY").WillReturnRows(
		sqlmock.NewRows([]string{"location_id", "name"}).AddRow(1, "Yard").AddRow(2, "Depot"))
	mock.ExpectQuery("FROM roads ORDER BY").WillReturnRows(
		sqlmock.NewRows([]string{"from_location", "to_location", "distance"}).AddRow(1, 2, 5))
	mock.ExpectQuery("FROM materials ORDER BY").WillReturnRows(
		sqlmock.NewRows([]string{"material_id", "name"}).AddRow(1, "Bio"))
	mock.ExpectQuery("FROM storages ORDER BY").WillReturnRows(
		sqlmock.NewRows([]string{"storage_id", "name", "location_id"}).AddRow(7, "North", 2))
	mock.ExpectQuery("FROM storage_materials").WillReturnRows(
		sqlmock.NewRows([]string{"storage_id", "material_id", "used", "max_amount"}).AddRow(7, 1, 2, 10))
	mock.ExpectQuery("FROM companies ORDER BY").WillReturnRows(
		sqlmock.NewRows([]string{"company_id", "name", "location_id"}).AddRow(3, "Acme", 1))
	mock.ExpectQuery("FROM company_materials").WillReturnRows(
		sqlmock.NewRows([]string{"company_id", "material_id", "amount"}).AddRow(3, 1, 4))
}

func TestPostgresViewLoadsNetwork(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	expectNetworkLoad(mock)
	mock.ExpectCommit()

	err := repo.View(context.Background(), func(net *domain.Network) error {
		s, ok := net.StorageAt(2)
		if !ok || s.ID != 7 || s.Name != "North" {
			t.Fatalf("storage at Depot = %+v, ok=%v", s, ok)
		}
		if got := s.Available(1); got != 8 {
			t.Fatalf("available Bio = %d, want 8", got)
		}
		c, ok := net.CompanyAt(1)
		if !ok || c.ID != 3 || c.Materials[1] != 4 {
			t.Fatalf("company at Yard = %+v, ok=%v", c, ok)
		}
		if roads := net.RoadsFrom(1); len(roads) != 1 || roads[0].Distance != 5 {
			t.Fatalf("roads from Yard = %+v", roads)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresUpdateAppliesDelta(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	expectNetworkLoad(mock)
	mock.ExpectExec("UPDATE storage_materials").
		WithArgs(int64(7), int64(1), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE company_materials").
		WithArgs(int64(3), int64(1), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), func(net *domain.Network) (domain.LedgerDelta, error) {
		return domain.LedgerDelta{
			Storages:  []domain.StorageUpdate{{StorageID: 7, Material: 1, Used: 6}},
			Companies: []domain.CompanyUpdate{{CompanyID: 3, Material: 1, Amount: 0}},
		}, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresUpdateRejectsMissingLedgerRow(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	expectNetworkLoad(mock)
	mock.ExpectExec("UPDATE storage_materials").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), func(net *domain.Network) (domain.LedgerDelta, error) {
		return domain.LedgerDelta{
			Storages: []domain.StorageUpdate{{StorageID: 7, Material: 9, Used: 1}},
		}, nil
	})
	if !errors.Is(err, domain.ErrUnknownLedgerRecord) {
		t.Fatalf("err = %v, want ErrUnknownLedgerRecord", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresUpdateReportsConflictOnCommit(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	expectNetworkLoad(mock)
	mock.ExpectExec("UPDATE company_materials").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})

	err := repo.Update(context.Background(), func(net *domain.Network) (domain.LedgerDelta, error) {
		return domain.LedgerDelta{
			Companies: []domain.CompanyUpdate{{CompanyID: 3, Material: 1, Amount: 0}},
		}, nil
	})
	if !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresUpdateSkipsEmptyDelta(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin()
	expectNetworkLoad(mock)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), func(net *domain.Network) (domain.LedgerDelta, error) {
		return domain.LedgerDelta{}, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
