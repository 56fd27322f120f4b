package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/thread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplySuggester_WritesEntries(t *testing.T) {
	repo := seedRepo(t)
	llmFake := &fakeCompleter{reply: "Great point about generics."}
	r, err := ParseDateRange("2024-05-20", "")
	require.NoError(t, err)

	var out strings.Builder
	n, err := NewReplySuggester(repo, llmFake, testLogger()).Suggest(context.Background(), &out, r)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "\n### Data for Date(s): 2024-05-20 ###\n\n===START_POST_ENTRY===\nPOST_ID_FULL: t3_p1\n"))
	assert.Equal(t, 2, strings.Count(text, "===START_POST_ENTRY==="))
	assert.Equal(t, 2, strings.Count(text, "===END_POST_ENTRY===\n\n---\n\n"))
	assert.Contains(t, text, "POST_SUBREDDIT: r/golang\nPOST_DATE: 2024-05-20 01:00 UTC\n---POST_BODY_START---\nearly post\n---POST_BODY_END---\n\n")
	assert.Contains(t, text, "---COMMENTS_START---\n"+thread.NoCommentsPlaceholder+"\n---COMMENTS_END---")
	assert.Contains(t, text, "MARK_TO_POST: [ ]\nTARGET_PARENT_ID:\nLLM_SUGGESTED_REPLY (via fake-model):\n---SUGGESTED_REPLY_START---\nGreat point about generics.\n---SUGGESTED_REPLY_END---\n")

	require.Len(t, llmFake.prompts, 2)
	assert.Contains(t, llmFake.prompts[0], "Reddit Thread:\nPost ID: t3_p1\n")
	assert.Contains(t, llmFake.prompts[0], "---COMMENTS_START---\nComment by alice (ID: t1_c1")
	assert.True(t, strings.HasSuffix(llmFake.prompts[0], "---COMMENTS_END---"))
	assert.Equal(t, ReplySystemPrompt, llmFake.systems[0])
}

func TestReplySuggester_FailurePlaceholder(t *testing.T) {
	repo := seedRepo(t)
	llmFake := &fakeCompleter{err: errors.New("all down")}
	r, err := ParseDateRange("2024-05-20", "")
	require.NoError(t, err)

	var out strings.Builder
	_, err = NewReplySuggester(repo, llmFake, testLogger()).Suggest(context.Background(), &out, r)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "LLM_SUGGESTED_REPLY (via N/A):\n---SUGGESTED_REPLY_START---\n"+ReplyFailedPlaceholder+"\n")
}

func TestReplySuggester_NoPosts(t *testing.T) {
	r, err := ParseDateRange("2001-01-01", "")
	require.NoError(t, err)

	var out strings.Builder
	_, err = NewReplySuggester(seedRepo(t), &fakeCompleter{}, testLogger()).Suggest(context.Background(), &out, r)
	assert.ErrorIs(t, err, domain.ErrNoPosts)
}

func TestReplySuggester_Header(t *testing.T) {
	s := NewReplySuggester(seedRepo(t), &fakeCompleter{}, testLogger())
	s.now = func() time.Time { return day }

	var out strings.Builder
	require.NoError(t, s.WriteHeader(&out))

	assert.True(t, strings.HasPrefix(out.String(), "# Reddit Reply Suggestions - Plain Text Format\n# Generated on: 2024-05-20 00:00:00 UTC\n"))
}
