package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/IdentityGrid/internal/db"
)

var fixedNow = time.Unix(1700000000, 0)

func setupMock(t *testing.T) (*KeyValueRepository, sqlmock.Sqlmock, func()) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresKeyValueRepository(conn)
	repo.now = func() time.Time { return fixedNow }
	cleanup := func() { conn.Close() }
	return repo, mock, cleanup
}

func TestGet_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)).
		WithArgs("identity-grid-accounts").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	value, err := repo.Get(context.Background(), "identity-grid-accounts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(value) != "[]" {
		t.Errorf("value = %q; want %q", value, "[]")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	value, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != nil {
		t.Errorf("expected nil value, got %q", value)
	}
}

func TestGet_Error(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store`)).
		WithArgs("k").
		WillReturnError(errors.New("query fail"))

	_, err := repo.Get(context.Background(), "k")
	if err == nil || !strings.Contains(err.Error(), "query fail") {
		t.Errorf("expected wrapped query error, got %v", err)
	}
}

func TestSet_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store (key, value, updated_at)`)).
		WithArgs("k", []byte(`{"a":1}`), fixedNow.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSet_Error(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store`)).
		WillReturnError(errors.New("disk full"))

	err := repo.Set(context.Background(), "k", nil)
	if err == nil || !strings.Contains(err.Error(), `set "k"`) {
		t.Errorf("expected wrapped set error, got %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	conn, err := db.InitSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	repo := NewSQLiteKeyValueRepository(conn)
	defer repo.Close()

	ctx := context.Background()
	if v, err := repo.Get(ctx, "k"); err != nil || v != nil {
		t.Fatalf("Get on empty table = %q, %v; want nil, nil", v, err)
	}
	if err := repo.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, err := repo.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "two" {
		t.Errorf("value = %q; want %q", v, "two")
	}
}
