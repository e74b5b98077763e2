package scopes

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+scopes\s+\(id\)\s+VALUES\s+\(\$1\)\s+ON\s+CONFLICT\s+\(id\)\s+DO\s+UPDATE.*WHERE\s+scopes\.deleted_at\s+IS\s+NOT\s+NULL\s+RETURNING\s+id,\s*created_at$`

	t.Run("new or revived", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		now := time.Now()
		mock.ExpectQuery(q).WithArgs("reports").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("reports", now))

		s, err := repo.Create(context.Background(), "reports")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ID != "reports" || !s.CreatedAt.Equal(now) {
			t.Fatalf("unexpected scope: %+v", s)
		}
	})

	t.Run("live duplicate", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("admin").WillReturnError(sql.ErrNoRows)

		if _, err := repo.Create(context.Background(), "admin"); !errors.Is(err, common.ErrorAlreadyExists) {
			t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("x").WillReturnError(errors.New("db down"))

		if _, err := repo.Create(context.Background(), "x"); err == nil || errors.Is(err, common.ErrorAlreadyExists) {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*created_at\s+FROM\s+scopes\s+WHERE\s+id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL$`

	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(q).WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("admin", time.Now()))
	mock.ExpectQuery(q).WithArgs("gone").WillReturnError(sql.ErrNoRows)

	if s, err := repo.Get(context.Background(), "admin"); err != nil || s.ID != "admin" {
		t.Fatalf("unexpected result: %+v, %v", s, err)
	}
	if _, err := repo.Get(context.Background(), "gone"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*created_at\s+FROM\s+scopes\s+WHERE\s+deleted_at\s+IS\s+NULL\s+ORDER\s+BY\s+id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("admin", now).AddRow("users", now))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "admin" || got[1].ID != "users" {
		t.Fatalf("unexpected scopes: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	q := `(?s)^UPDATE\s+scopes\s+SET\s+deleted_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL$`

	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(q).WithArgs("reports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("reports").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "reports"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(context.Background(), "reports"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestScopesOf(t *testing.T) {
	q := `(?s)^SELECT\s+s\.id\s+FROM\s+users_scopes\s+us\s+JOIN\s+scopes\s+s\s+ON\s+s\.id\s*=\s*us\.scope_id\s+WHERE\s+us\.user_id\s*=\s*\$1\s+AND\s+s\.deleted_at\s+IS\s+NULL\s+ORDER\s+BY\s+s\.id$`

	t.Run("assigned", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("admin").AddRow("users"))

		got, err := repo.ScopesOf(context.Background(), "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"admin", "users"}) {
			t.Fatalf("unexpected scopes: %v", got)
		}
	})

	t.Run("none is empty not nil", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("u2").WillReturnRows(sqlmock.NewRows([]string{"id"}))

		got, err := repo.ScopesOf(context.Background(), "u2")
		if err != nil || got == nil || len(got) != 0 {
			t.Fatalf("unexpected result: %#v, %v", got, err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("u1").WillReturnError(errors.New("db down"))

		if _, err := repo.ScopesOf(context.Background(), "u1"); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("row error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("admin").RowError(0, errors.New("broken")))

		if _, err := repo.ScopesOf(context.Background(), "u1"); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestAddToUser(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+users_scopes\s+\(user_id,\s*scope_id\)\s+VALUES\s+\(\$1,\s*\$2\)\s+ON\s+CONFLICT\s+\(user_id,\s*scope_id\)\s+DO\s+NOTHING$`

	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(q).WithArgs("u1", "admin").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u1", "admin").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.AddToUser(context.Background(), "u1", "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.AddToUser(context.Background(), "u1", "admin"); err != nil {
		t.Fatalf("second add must be a no-op, got %v", err)
	}
}

func TestRemoveFromUser(t *testing.T) {
	q := `(?s)^DELETE\s+FROM\s+users_scopes\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+scope_id\s*=\s*\$2$`

	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(q).WithArgs("u1", "admin").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u1", "admin").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.RemoveFromUser(context.Background(), "u1", "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.RemoveFromUser(context.Background(), "u1", "admin"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
