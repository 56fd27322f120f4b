package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/database"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/llm"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// day - 2024-05-20 00:00:00 UTC
var day = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

func at(offset time.Duration) float64 {
	return float64(day.Add(offset).Unix())
}

// seedRepo создает хранилище с двумя постами за день и одним постом накануне
func seedRepo(t *testing.T) *database.MemoryRepository {
	t.Helper()

	ctx := context.Background()
	repo := database.NewMemoryRepository()

	posts := []domain.Post{
		{ID: "p2", Subreddit: "golang", Title: "Second", Author: "op2", URL: "https://r/p2", CreatedUTC: at(10 * time.Hour), Selftext: "later post"},
		{ID: "p1", Subreddit: "golang", Title: "First", Author: "op1", URL: "https://r/p1", CreatedUTC: at(time.Hour), Selftext: "early post"},
		{ID: "p0", Subreddit: "golang", Title: "Yesterday", CreatedUTC: at(-time.Hour)},
	}
	for i := range posts {
		require.NoError(t, repo.SavePost(ctx, &posts[i]))
	}

	require.NoError(t, repo.SaveComments(ctx, "p1", []domain.Comment{
		{ID: "c1", ParentID: "p1", Author: "alice", Body: "first", CreatedUTC: at(2 * time.Hour)},
		{ID: "c2", ParentID: "c1", Author: "bob", Body: "reply", CreatedUTC: at(3 * time.Hour)},
	}))

	return repo
}

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	systems []string
	reply   string
	err     error
	failOn  map[int]bool
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.prompts)
	f.prompts = append(f.prompts, user)
	f.systems = append(f.systems, system)

	if f.err != nil || f.failOn[call] {
		return llm.Completion{}, errors.Join(llm.ErrNoBackendAvailable, f.err)
	}
	return llm.Completion{Text: f.reply, Backend: "fake-model"}, nil
}
