package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/hitoshi/todoman/internal/model"
)

// newMockDB はsqlmockのDBとモックを生成する。
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func assertExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

var userColumnsList = []string{"id", "username", "password", "role", "created_at"}

func TestPostgresUserRepo_FindByUsername_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, password, role, created_at FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumnsList).AddRow("user-1", "alice", "hash", "USER", now))

	user, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != "user-1" || user.Username != "alice" || user.Password != "hash" || user.Role != "USER" {
		t.Errorf("unexpected user: %+v", user)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_FindByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.FindByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_FindByUsername_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnError(dbErr)

	_, err := repo.FindByUsername(context.Background(), "alice")
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_ExistsByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE username = \$1\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected exists = true")
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)
	user := &model.User{ID: "user-1", Username: "alice", Password: "hash", Role: model.DefaultRole, CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(user.ID, user.Username, user.Password, user.Role, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_Create_DuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)
	user := &model.User{ID: "user-2", Username: "alice", Password: "hash", Role: model.DefaultRole, CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := repo.Create(context.Background(), user)
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_Create_OtherError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23502"})

	err := repo.Create(context.Background(), &model.User{ID: "user-3"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrDuplicateUsername) {
		t.Error("not-null violation must not be reported as duplicate username")
	}
	assertExpectations(t, mock)
}
