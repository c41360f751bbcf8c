package postgres_test

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/citebase/internal/adapter/postgres"
)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestRunInTx_Commit(t *testing.T) {
	t.Parallel()

	mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE citations").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, mock)
		_, execErr := q.Exec(ctx, "UPDATE citations SET citation_key = $1 WHERE id = $2", "k", int64(1))
		return execErr
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	t.Parallel()

	mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("business logic error")

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	t.Parallel()

	mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tm := postgres.NewTxManager(mock)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		panic("boom")
	})
}

func TestQuerierFromCtx_NoTxFallsBackToDB(t *testing.T) {
	t.Parallel()

	mock := newMockDB(t)
	q := postgres.QuerierFromCtx(context.Background(), mock)
	if q != postgres.Querier(mock) {
		t.Error("expected the db handle when no transaction is in context")
	}
}
