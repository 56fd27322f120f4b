package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"STORAGE_TYPE", "POSTS_PER_SUBREDDIT", "REDDIT_COMMENT_DEPTH", "LLM_RETRY_WAIT", "DEFAULT_POSTS_PER_API_CALL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Type)
	assert.Equal(t, 40, cfg.Reddit.PostsPerSubreddit)
	assert.Equal(t, 8, cfg.Reddit.CommentDepth)
	assert.Equal(t, 5*time.Second, cfg.LLM.RetryWait)
	assert.Equal(t, 5, cfg.Export.ChunkSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "In-Memory")
	t.Setenv("POSTS_PER_SUBREDDIT", "12")
	t.Setenv("REDDIT_INITIAL_BACKOFF", "90")
	t.Setenv("LLM_TIMEOUT", "2m")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 12, cfg.Reddit.PostsPerSubreddit)
	assert.Equal(t, 90*time.Second, cfg.Reddit.InitialBackoff)
	assert.Equal(t, 2*time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("REDDIT_COMMENT_LIMIT", "lots")
	t.Setenv("REDDIT_MAX_BACKOFF", "forever")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Reddit.CommentLimit)
	assert.Equal(t, time.Hour, cfg.Reddit.MaxBackoff)
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "n", SSLMode: "require"}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=require", c.DSN())
}
