package thread

import (
	"strings"
	"testing"

	"github.com/oziev02/ThreadDigest/internal/domain"

	"github.com/stretchr/testify/assert"
)

func samplePost() domain.Post {
	return domain.Post{
		ID:         "p1",
		Subreddit:  "golang",
		Title:      `Is "generics" worth it?`,
		Author:     "op",
		URL:        "https://www.reddit.com/r/golang/comments/p1/",
		CreatedUTC: 1716163200, // 2024-05-20 00:00:00 UTC
		Selftext:   "  Asking for a friend.  ",
	}
}

func TestFormatThread_EmptyBatchPlaceholder(t *testing.T) {
	post := samplePost()

	for _, d := range []Dialect{PlainIndented, MarkdownBlockquote, FlatTagged} {
		out := FormatThread(post, BuildIndex(nil), d)
		assert.Contains(t, out, NoCommentsPlaceholder, d.Name)
	}
}

func TestFormatThread_AllCommentsDeletedUsesPlaceholder(t *testing.T) {
	comments := []domain.Comment{{ID: "c1", ParentID: "p1", Body: "[removed]"}}

	out := FormatThread(samplePost(), BuildIndex(comments), MarkdownBlockquote)

	assert.Contains(t, out, NoCommentsPlaceholder)
}

func TestFormatThread_DeletedBodyPlaceholder(t *testing.T) {
	post := samplePost()

	for _, body := range []string{"", "   ", "[deleted]", "[Removed]"} {
		post.Selftext = body
		s := Sections(post, BuildIndex(nil), PlainIndented)
		assert.Equal(t, NoBodyPlaceholder, s.Body, body)
	}
}

func TestFormatThread_Plain(t *testing.T) {
	out := FormatThread(samplePost(), BuildIndex(sampleComments()), PlainIndented)

	expectedHead := "--- START OF REDDIT POST ---\n" +
		"Subreddit: r/golang\n" +
		"Title: Is \"generics\" worth it?\n" +
		"Author: op\n" +
		"Date: 2024-05-20 00:00 UTC\n" +
		"URL: https://www.reddit.com/r/golang/comments/p1/\n" +
		"Body:\nAsking for a friend.\n\n" +
		"--- COMMENTS FOR THIS POST ---\n" +
		"Comment by carol"
	assert.True(t, strings.HasPrefix(out, expectedHead), out)
	assert.True(t, strings.HasSuffix(out, "    reply\n\n--- END OF REDDIT POST ---\n"), out)
}

func TestFormatThread_PlainNoBody(t *testing.T) {
	post := samplePost()
	post.Selftext = ""

	out := FormatThread(post, BuildIndex(nil), PlainIndented)

	assert.Contains(t, out, "Body: [No body text or body was deleted/removed]\n\n")
	assert.Contains(t, out, "--- COMMENTS FOR THIS POST ---\n[No comments found for this post]\n\n--- END OF REDDIT POST ---\n")
}

func TestFormatThread_Markdown(t *testing.T) {
	out := FormatThread(samplePost(), BuildIndex(sampleComments()), MarkdownBlockquote)

	expected := "# Is \"generics\" worth it?\n" +
		"**Author:** op | **Posted:** 2024-05-20 00:00:00 UTC | **URL:** https://www.reddit.com/r/golang/comments/p1/\n\n" +
		"Asking for a friend.\n\n" +
		"## Comments\n\n" +
		"> **carol** (1970-01-01 00:00:50 UTC):\n" +
		"> second\n" +
		"\n" +
		"> **alice** (1970-01-01 00:01:40 UTC):\n" +
		"> first\n" +
		"\n" +
		"> > **bob** (1970-01-01 00:03:20 UTC):\n" +
		"> > reply\n"
	assert.Equal(t, expected, out)
}

func TestFormatThread_Flat(t *testing.T) {
	out := FormatThread(samplePost(), BuildIndex(sampleComments()), FlatTagged)

	expected := "<post_title=\"Is 'generics' worth it?\">\n" +
		"Asking for a friend.\n" +
		"<comments_section>\n" +
		"second\nfirst\nreply\n" +
		"</comments_section>\n"
	assert.Equal(t, expected, out)
}

func TestFormatThread_DefaultsForMissingMetadata(t *testing.T) {
	post := domain.Post{ID: "p2", CreatedUTC: -1e300}

	plain := FormatThread(post, BuildIndex(nil), PlainIndented)
	assert.Contains(t, plain, "Subreddit: r/unknown\n")
	assert.Contains(t, plain, "Title: N/A\n")
	assert.Contains(t, plain, "Author: [deleted]\n")
	assert.Contains(t, plain, "Date: [invalid date]\n")

	md := FormatThread(post, BuildIndex(nil), MarkdownBlockquote)
	assert.True(t, strings.HasPrefix(md, "# Untitled Post\n**Author:** Unknown Author | **Posted:** [invalid date]"))
}
