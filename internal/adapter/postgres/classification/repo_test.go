package classification

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/citebase/internal/domain"
)

func newMock(t *testing.T, kind Kind) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock, kind), mock
}

func expectationsMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_GetByName(t *testing.T) {
	repo, mock := newMock(t, Tags)

	mock.ExpectQuery(`SELECT id, name FROM tags`).
		WithArgs("testing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "testing"))

	got, err := repo.GetByName(context.Background(), "testing")
	if err != nil {
		t.Fatalf("GetByName: unexpected error: %v", err)
	}
	if got.ID != 3 || got.Name != "testing" {
		t.Errorf("got %+v, want {3 testing}", got)
	}

	expectationsMet(t, mock)
}

func TestRepo_GetByName_NotFound(t *testing.T) {
	repo, mock := newMock(t, Categories)

	mock.ExpectQuery(`SELECT id, name FROM categories`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestRepo_GetOrCreate_MixedExistingAndNew(t *testing.T) {
	repo, mock := newMock(t, Tags)

	mock.ExpectQuery(`SELECT id, name FROM tags`).
		WithArgs("testing", "research").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "testing"))

	mock.ExpectQuery(`INSERT INTO tags .+ unnest`).
		WithArgs([]string{"research"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(2), "research"))

	got, err := repo.GetOrCreate(context.Background(), []string{"testing", "research"})
	if err != nil {
		t.Fatalf("GetOrCreate: unexpected error: %v", err)
	}

	want := []domain.Classification{{ID: 1, Name: "testing"}, {ID: 2, Name: "research"}}
	if len(got) != len(want) {
		t.Fatalf("got %d classifications, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %+v, want %+v (input order must be preserved)", i, got[i], want[i])
		}
	}

	expectationsMet(t, mock)
}

func TestRepo_GetOrCreate_AllExistingSkipsInsert(t *testing.T) {
	repo, mock := newMock(t, Tags)

	mock.ExpectQuery(`SELECT id, name FROM tags`).
		WithArgs("testing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "testing"))

	got, err := repo.GetOrCreate(context.Background(), []string{"testing"})
	if err != nil {
		t.Fatalf("GetOrCreate: unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("got %+v, want [{1 testing}]", got)
	}

	expectationsMet(t, mock)
}

func TestRepo_GetOrCreate_EmptyInput(t *testing.T) {
	repo, mock := newMock(t, Tags)

	got, err := repo.GetOrCreate(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetOrCreate: unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}

	expectationsMet(t, mock)
}

func TestRepo_Replace(t *testing.T) {
	repo, mock := newMock(t, Categories)

	mock.ExpectExec(`DELETE FROM citation_categories`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO citation_categories .+ unnest`).
		WithArgs(int64(7), []int64{1, 2}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	if err := repo.Replace(context.Background(), 7, []int64{1, 2}); err != nil {
		t.Fatalf("Replace: unexpected error: %v", err)
	}

	expectationsMet(t, mock)
}

func TestRepo_Replace_EmptyClearsLinks(t *testing.T) {
	repo, mock := newMock(t, Tags)

	mock.ExpectExec(`DELETE FROM citation_tags`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	if err := repo.Replace(context.Background(), 7, nil); err != nil {
		t.Fatalf("Replace: unexpected error: %v", err)
	}

	expectationsMet(t, mock)
}

func TestRepo_DeleteOrphans(t *testing.T) {
	repo, mock := newMock(t, Tags)

	mock.ExpectExec(`DELETE FROM tags l WHERE l.id = ANY.+NOT EXISTS`).
		WithArgs([]int64{1, 2, 3}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.DeleteOrphans(context.Background(), []int64{1, 2, 3}); err != nil {
		t.Fatalf("DeleteOrphans: unexpected error: %v", err)
	}

	expectationsMet(t, mock)
}

func TestRepo_DeleteOrphans_EmptyInputSkipsQuery(t *testing.T) {
	repo, mock := newMock(t, Tags)

	if err := repo.DeleteOrphans(context.Background(), nil); err != nil {
		t.Fatalf("DeleteOrphans: unexpected error: %v", err)
	}

	expectationsMet(t, mock)
}

func TestRepo_IDsByCitation(t *testing.T) {
	repo, mock := newMock(t, Tags)

	mock.ExpectQuery(`SELECT tag_id FROM citation_tags`).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"tag_id"}).AddRow(int64(1)).AddRow(int64(5)))

	got, err := repo.IDsByCitation(context.Background(), 4)
	if err != nil {
		t.Fatalf("IDsByCitation: unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 5 {
		t.Errorf("got %v, want [1 5]", got)
	}

	expectationsMet(t, mock)
}

func TestRepo_ListByCitation(t *testing.T) {
	repo, mock := newMock(t, Categories)

	mock.ExpectQuery(`SELECT l.id, l.name FROM categories l JOIN citation_categories`).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "distributed systems").
			AddRow(int64(9), "testing"))

	got, err := repo.ListByCitation(context.Background(), 4)
	if err != nil {
		t.Fatalf("ListByCitation: unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "distributed systems" {
		t.Errorf("got %+v", got)
	}

	expectationsMet(t, mock)
}
