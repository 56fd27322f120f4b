package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/thread"
)

// ReplySystemPrompt - системное сообщение для генерации ответа в тред
const ReplySystemPrompt = "You are an expert AI assistant skilled at analyzing discussions and crafting insightful replies. " +
	"You will be given a Reddit post and its comment thread. Read the entire thread and suggest one well-reasoned, " +
	"helpful or engaging reply, either to the post or to a specific comment. If you reply to a comment, briefly reference it. " +
	"If no constructive reply comes to mind, say so. Output only the suggested reply itself, without any preamble."

// ReplyFailedPlaceholder пишется вместо ответа, если ни один бэкенд не ответил
const ReplyFailedPlaceholder = "[LLM failed to generate reply.]"

// ReplySuggester готовит файл для ручного разбора: тред, блок действий и предложенный ответ
type ReplySuggester struct {
	repo   domain.ThreadRepository
	llm    Completer
	logger *slog.Logger
	now    func() time.Time
}

// NewReplySuggester создает новый экземпляр ReplySuggester
func NewReplySuggester(repo domain.ThreadRepository, completer Completer, logger *slog.Logger) *ReplySuggester {
	return &ReplySuggester{repo: repo, llm: completer, logger: logger, now: time.Now}
}

// WriteHeader пишет заголовок нового файла предложений
func (s *ReplySuggester) WriteHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# Reddit Reply Suggestions - Plain Text Format\n# Generated on: %s\n# System Prompt for LLM: %s\n\n",
		s.now().UTC().Format("2006-01-02 15:04:05 UTC"), ReplySystemPrompt)
	return err
}

// Suggest пишет по одной записи на каждый пост интервала и возвращает их количество
func (s *ReplySuggester) Suggest(ctx context.Context, w io.Writer, r DateRange) (int, error) {
	posts, err := s.repo.PostsBetween(ctx, r.From, r.To)
	if err != nil {
		return 0, fmt.Errorf("failed to get posts: %w", err)
	}
	if len(posts) == 0 {
		return 0, domain.ErrNoPosts
	}

	if _, err := fmt.Fprintf(w, "\n### Data for Date(s): %s ###\n\n", r.String()); err != nil {
		return 0, fmt.Errorf("failed to write suggestions: %w", err)
	}

	for i, post := range posts {
		s.logger.Info("suggesting reply", "post", i+1, "posts", len(posts), "post_id", "t3_"+post.ID)

		idx, err := loadIndex(ctx, s.repo, post.ID)
		if err != nil {
			return i, err
		}
		sections := thread.Sections(post, idx, thread.PlainIndented)
		info := postInfoBlock(post)

		input := strings.Replace(info, "POST_ID_FULL:", "Post ID:", 1) +
			"---POST_BODY_START---\n" + sections.Body + "\n---POST_BODY_END---\n\n" +
			"---COMMENTS_START---\n" + sections.Comments + "\n---COMMENTS_END---"
		prompt := "Please analyze the following Reddit thread and suggest a reply. " +
			"Remember, your output should be only the suggested reply itself.\n\nReddit Thread:\n" + input

		reply, backend := ReplyFailedPlaceholder, "N/A"
		res, err := s.llm.Complete(ctx, ReplySystemPrompt, prompt)
		if ctx.Err() != nil {
			return i, ctx.Err()
		}
		if err != nil {
			s.logger.Error("reply generation failed", "post_id", post.ID, "error", err)
		} else {
			reply, backend = res.Text, res.Backend
		}

		if _, err := io.WriteString(w, replyEntry(info, sections, reply, backend)); err != nil {
			return i, fmt.Errorf("failed to write suggestions: %w", err)
		}
	}

	return len(posts), nil
}

func postInfoBlock(post domain.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "POST_ID_FULL: t3_%s\n", post.ID)
	fmt.Fprintf(&b, "POST_URL: %s\n", nonEmpty(post.URL, "N/A"))
	fmt.Fprintf(&b, "POST_TITLE: %s\n", nonEmpty(post.Title, "N/A"))
	fmt.Fprintf(&b, "POST_AUTHOR: %s\n", nonEmpty(post.Author, domain.DeletedSentinel))
	fmt.Fprintf(&b, "POST_SUBREDDIT: r/%s\n", nonEmpty(post.Subreddit, "unknown"))
	fmt.Fprintf(&b, "POST_DATE: %s\n", thread.PostDate(post))
	return b.String()
}

func replyEntry(info string, sections thread.PostSections, reply, backend string) string {
	var b strings.Builder
	b.WriteString("===START_POST_ENTRY===\n")
	b.WriteString(info)
	b.WriteString("---POST_BODY_START---\n")
	b.WriteString(sections.Body + "\n")
	b.WriteString("---POST_BODY_END---\n\n")
	b.WriteString("---COMMENTS_START---\n")
	b.WriteString(sections.Comments + "\n")
	b.WriteString("---COMMENTS_END---\n\n")
	b.WriteString("---ACTION_BLOCK_START---\n")
	b.WriteString("MARK_TO_POST: [ ]\n")
	b.WriteString("TARGET_PARENT_ID:\n")
	fmt.Fprintf(&b, "LLM_SUGGESTED_REPLY (via %s):\n", backend)
	b.WriteString("---SUGGESTED_REPLY_START---\n")
	b.WriteString(reply + "\n")
	b.WriteString("---SUGGESTED_REPLY_END---\n")
	b.WriteString("---ACTION_BLOCK_END---\n")
	b.WriteString("===END_POST_ENTRY===\n\n---\n\n")
	return b.String()
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
