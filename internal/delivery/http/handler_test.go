package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/database"
	"github.com/oziev02/ThreadDigest/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	ctx := context.Background()
	repo := database.NewMemoryRepository()
	require.NoError(t, repo.SavePost(ctx, &domain.Post{ID: "p1", Title: "First", CreatedUTC: 1716163200}))
	require.NoError(t, repo.SavePost(ctx, &domain.Post{ID: "p0", Title: "Older", CreatedUTC: 1700000000}))
	require.NoError(t, repo.SaveComments(ctx, "p1", []domain.Comment{
		{ID: "c1", ParentID: "p1", Author: "alice", Body: "first", CreatedUTC: 1716163300},
		{ID: "c2", ParentID: "c1", Author: "bob", Body: "reply", CreatedUTC: 1716163400},
	}))

	mux := NewRouter(usecase.NewThreadUseCase(repo))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return LoggingMiddleware(logger, CORSMiddleware(mux))
}

func TestThreadHandler_ListPosts(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PostsListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "p0", resp.Posts[0].ID)
	assert.Equal(t, "2024-05-20T00:00:00Z", resp.Posts[1].CreatedAt)
}

func TestThreadHandler_ListPostsByDate(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts?from=2024-05-20&to=2024-05-20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PostsListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "p1", resp.Posts[0].ID)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts?from=2024-05-21&to=2024-05-20", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThreadHandler_GetTree(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/p1/comments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CommentsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "c1", resp.Comments[0].Comment.ID)
	require.Len(t, resp.Comments[0].Children, 1)
	assert.Equal(t, "c2", resp.Comments[0].Children[0].Comment.ID)
}

func TestThreadHandler_Render(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/p1/thread?dialect=markdown", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# First\n"))
	assert.Contains(t, rec.Body.String(), "> > **bob**")
}

func TestThreadHandler_Errors(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/p1/thread?dialect=html", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/missing/comments", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/missing/thread", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
