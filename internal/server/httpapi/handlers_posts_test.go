package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/alivecn/funarcade/internal/common"
	"github.com/alivecn/funarcade/internal/server/models"
)

func TestListPosts_Public(t *testing.T) {
	posts := &fakePostProvider{listOut: []*models.Post{
		{ID: "p2", Title: "Second", Author: models.PostAuthor{ID: "u1", Username: "alice"}},
		{ID: "p1", Title: "First", Author: models.PostAuthor{ID: "u2", Username: "bob"}},
	}}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodGet, "/api/posts", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(got) != 2 || got[0]["_id"] != "p2" {
		t.Fatalf("unexpected list: %v", got)
	}
	author, ok := got[0]["author"].(map[string]any)
	if !ok || author["username"] != "alice" {
		t.Fatalf("author not populated: %v", got[0])
	}
}

func TestListPosts_StoreFailure(t *testing.T) {
	posts := &fakePostProvider{listErr: errors.New("db down")}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodGet, "/api/posts", "", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestGetPost_Public(t *testing.T) {
	posts := &fakePostProvider{getOut: &models.Post{ID: "p1", Title: "Hello"}}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodGet, "/api/posts/p1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["_id"] != "p1" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	posts := &fakePostProvider{getErr: common.ErrorNotFound}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodGet, "/api/posts/missing", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCreatePost_RequiresToken(t *testing.T) {
	srv := newTestServer(t, &fakeUserProvider{}, &fakePostProvider{}, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodPost, "/api/posts", "", `{"title":"x","content":"y"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCreatePost_Created(t *testing.T) {
	posts := &fakePostProvider{createOut: &models.Post{ID: "p1", Title: "Hello"}}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodPost, "/api/posts", tokenFor(t, "u1", "alice", false),
		`{"title":"Hello","content":"Body"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if posts.createClaims == nil || posts.createClaims.UserID != "u1" {
		t.Fatalf("claims not forwarded: %+v", posts.createClaims)
	}
}

func TestCreatePost_Validation(t *testing.T) {
	posts := &fakePostProvider{createErr: common.ErrorValidation}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodPost, "/api/posts", tokenFor(t, "u1", "alice", false),
		`{"title":"","content":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdatePost_Forbidden(t *testing.T) {
	posts := &fakePostProvider{updateErr: common.ErrorForbidden}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodPut, "/api/posts/p1", tokenFor(t, "u2", "bob", false),
		`{"title":"New","content":"Body"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestUpdatePost_Success(t *testing.T) {
	posts := &fakePostProvider{updateOut: &models.Post{ID: "p1", Title: "New"}}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodPut, "/api/posts/p1", tokenFor(t, "u1", "alice", false),
		`{"title":"New","content":"Body"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["title"] != "New" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestDeletePost_NotFound(t *testing.T) {
	posts := &fakePostProvider{deleteErr: common.ErrorNotFound}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodDelete, "/api/posts/missing", tokenFor(t, "u1", "alice", false), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeletePost_Success(t *testing.T) {
	srv := newTestServer(t, &fakeUserProvider{}, &fakePostProvider{}, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodDelete, "/api/posts/p1", tokenFor(t, "u1", "alice", false), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["message"] == "" {
		t.Fatalf("expected a message, got %v", body)
	}
}

func TestAddComment_Created(t *testing.T) {
	posts := &fakePostProvider{commentOut: &models.Post{
		ID:       "p1",
		Comments: []models.Comment{{Content: "nice", Author: "bob"}},
	}}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodPost, "/api/posts/p1/comments", tokenFor(t, "u2", "bob", false),
		`{"content":"nice"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if posts.commentContent != "nice" {
		t.Fatalf("content not forwarded: %q", posts.commentContent)
	}
	if posts.commentClaims == nil || posts.commentClaims.Username != "bob" {
		t.Fatalf("claims not forwarded: %+v", posts.commentClaims)
	}

	body := decodeBody(t, w)
	comments, ok := body["comments"].([]any)
	if !ok || len(comments) != 1 {
		t.Fatalf("updated post not returned: %v", body)
	}
}

func TestAddComment_PostMissing(t *testing.T) {
	posts := &fakePostProvider{commentErr: common.ErrorNotFound}
	srv := newTestServer(t, &fakeUserProvider{}, posts, &fakeAvatarProvider{})

	w := doRequest(t, srv, http.MethodPost, "/api/posts/missing/comments", tokenFor(t, "u1", "alice", false),
		`{"content":"hi"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
