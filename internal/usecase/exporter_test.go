package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/database"
	"github.com/oziev02/ThreadDigest/internal/thread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-05-20", "")
	require.NoError(t, err)
	assert.Equal(t, day, r.From)
	assert.Equal(t, day.Add(24*time.Hour-time.Second), r.To)
	assert.Equal(t, "2024-05-20", r.String())

	r, err = ParseDateRange("2024-05-01", "2024-05-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 to 2024-05-03", r.String())

	_, err = ParseDateRange("2024-05-03", "2024-05-01")
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = ParseDateRange("20/05/2024", "")
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestExporter_MarkdownInDateOrder(t *testing.T) {
	repo := seedRepo(t)
	r, err := ParseDateRange("2024-05-20", "")
	require.NoError(t, err)

	var out strings.Builder
	n, err := NewExporter(repo, 4, testLogger()).Export(context.Background(), &out, r, thread.MarkdownBlockquote)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "# First\n"))
	assert.Contains(t, text, "\n---\n\n# Second\n")
	assert.NotContains(t, text, "Yesterday")
	assert.Contains(t, text, "> > **bob**")
	assert.Contains(t, text, "## Comments\n\n"+thread.NoCommentsPlaceholder)
	assert.Equal(t, 1, strings.Count(text, "\n---\n\n"))
}

func TestExporter_NoPosts(t *testing.T) {
	r, err := ParseDateRange("2020-01-01", "")
	require.NoError(t, err)

	var out strings.Builder
	_, err = NewExporter(database.NewMemoryRepository(), 2, testLogger()).Export(context.Background(), &out, r, thread.PlainIndented)
	assert.ErrorIs(t, err, domain.ErrNoPosts)
	assert.Empty(t, out.String())
}

func TestExporter_FlatSeparatesPosts(t *testing.T) {
	repo := seedRepo(t)
	r, err := ParseDateRange("2024-05-19", "2024-05-20")
	require.NoError(t, err)

	var out strings.Builder
	n, err := NewExporter(repo, 1, testLogger()).Export(context.Background(), &out, r, thread.FlatTagged)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, strings.Count(out.String(), "</comments_section>\n\n<post_title="))
}

func TestThreadUseCase(t *testing.T) {
	ctx := context.Background()
	uc := NewThreadUseCase(seedRepo(t))

	posts, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"p0", "p1", "p2"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})

	trees, err := uc.GetTree(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, "c2", trees[0].Children[0].Comment.ID)

	text, err := uc.Render(ctx, "p1", "plain")
	require.NoError(t, err)
	assert.Contains(t, text, "--- START OF REDDIT POST ---")

	_, err = uc.Render(ctx, "p1", "html")
	assert.ErrorIs(t, err, domain.ErrUnknownDialect)

	_, err = uc.GetTree(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}
