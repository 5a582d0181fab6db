package posts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alivecn/funarcade/internal/common"
	"github.com/alivecn/funarcade/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func postColumns() []string {
	return []string{"id", "title", "content", "author_id", "username", "comments", "created_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+posts\s*\(title,\s*content,\s*author_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("Hello", "First post", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p-1", now))

	post := &models.Post{
		Title:   "Hello",
		Content: "First post",
		Author:  models.PostAuthor{ID: "u-1", Username: "alice"},
	}
	got, err := repo.Create(context.Background(), post)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "p-1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected post: %+v", got)
	}
	if got.Comments == nil || len(got.Comments) != 0 {
		t.Fatalf("expected empty comment list, got %+v", got.Comments)
	}
}

func TestGetByID_PopulatesAuthorAndComments(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	comments := `[{"content":"nice","author":"bob","createdAt":"2026-01-02T03:04:05Z"}]`
	rows := sqlmock.NewRows(postColumns()).
		AddRow("p-1", "Hello", "First post", "u-1", "alice", []byte(comments), time.Now())
	mock.ExpectQuery(`(?s)SELECT .* FROM posts p\s+JOIN users u ON u\.id = p\.author_id\s+WHERE p\.id = \$1`).
		WithArgs("p-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Author.Username != "alice" {
		t.Fatalf("author not populated: %+v", got.Author)
	}
	if len(got.Comments) != 1 || got.Comments[0].Author != "bob" {
		t.Fatalf("comments not decoded: %+v", got.Comments)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM posts p`).
		WithArgs("p-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "p-404")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_MalformedIDReadsAsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM posts p`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(postColumns()).
		AddRow("p-2", "Second", "b", "u-1", "alice", []byte(`[]`), time.Now()).
		AddRow("p-1", "First", "a", "u-2", "bob", []byte(`[]`), time.Now().Add(-time.Hour))
	mock.ExpectQuery(`(?s)SELECT .* FROM posts p\s+JOIN users u ON u\.id = p\.author_id\s+ORDER BY p\.created_at DESC`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p-2" || got[1].ID != "p-1" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .* FROM posts p`).
		WillReturnRows(sqlmock.NewRows(postColumns()))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE posts SET title = \$2, content = \$3 WHERE id = \$1`).
		WithArgs("p-1", "New title", "New content").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "p-1", "New title", "New content"); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE posts SET title = \$2, content = \$3 WHERE id = \$1`).
		WithArgs("p-404", "x", "y").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "p-404", "x", "y")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestAppendComment_SingleStatement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	encoded := `{"content":"nice","author":"bob","createdAt":"2026-01-02T03:04:05Z"}`

	mock.ExpectExec(`UPDATE posts SET comments = comments \|\| \$2::jsonb WHERE id = \$1`).
		WithArgs("p-1", []byte(encoded)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendComment(context.Background(), "p-1",
		models.Comment{Content: "nice", Author: "bob", CreatedAt: created})
	if err != nil {
		t.Fatalf("AppendComment error: %v", err)
	}
}

func TestAppendComment_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE posts SET comments = comments \|\| \$2::jsonb WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AppendComment(context.Background(), "p-404", models.Comment{Content: "hi", Author: "bob"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}
