package database

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oziev02/ThreadDigest/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgres(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.InitSchema(ctx))

	_, err = pool.Exec(ctx, `TRUNCATE comments, posts`)
	require.NoError(t, err)

	return repo
}

func TestPostgresRepository_RoundTrip(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()

	post := &domain.Post{ID: "p1", Subreddit: "golang", Title: "t", CreatedUTC: 1716163200}
	require.NoError(t, repo.SavePost(ctx, post))
	post.Title = "updated"
	require.NoError(t, repo.SavePost(ctx, post))

	got, err := repo.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Title)

	comments := []domain.Comment{
		{ID: "c1", ParentID: "p1", Body: "one", CreatedUTC: 1716163300, Awards: json.RawMessage(`[]`)},
		{ID: "c2", ParentID: "c1", Body: "two", CreatedUTC: math.NaN()},
	}
	require.NoError(t, repo.SaveComments(ctx, "p1", comments))
	require.NoError(t, repo.SaveComments(ctx, "p1", comments))

	stored, err := repo.CommentsByPost(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "c2", stored[0].ID)
	assert.True(t, math.IsNaN(stored[0].CreatedUTC))
	assert.Equal(t, "p1", stored[1].PostID)

	day := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	posts, err := repo.PostsBetween(ctx, day, day.Add(24*time.Hour-time.Second))
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = repo.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}
