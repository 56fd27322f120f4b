package usecase

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
)

// Fetcher получает посты и комментарии из внешнего API
type Fetcher interface {
	Listing(ctx context.Context, subreddit string) ([]domain.Post, error)
	Comments(ctx context.Context, subreddit, postID string) ([]domain.Comment, error)
}

// CollectSummary описывает результат одного запуска сборщика
type CollectSummary struct {
	Folder   string
	Posts    int
	Comments int
	Failed   []string
}

// Collector скачивает треды, сохраняет их в хранилище и пишет JSON снимки за день
type Collector struct {
	fetcher Fetcher
	repo    domain.ThreadRepository
	dataDir string
	logger  *slog.Logger
	now     func() time.Time
}

// NewCollector создает новый экземпляр Collector
func NewCollector(fetcher Fetcher, repo domain.ThreadRepository, dataDir string, logger *slog.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		repo:    repo,
		dataDir: dataDir,
		logger:  logger,
		now:     time.Now,
	}
}

// Run обходит сабреддиты по очереди.
// Ошибка получения сабреддита или комментариев логируется и не прерывает сбор,
// ошибка хранилища прерывает.
func (c *Collector) Run(ctx context.Context, subreddits []string) (CollectSummary, error) {
	now := c.now()
	folder := filepath.Join(c.dataDir, now.Format("01-02-2006"))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return CollectSummary{}, fmt.Errorf("failed to create data folder: %w", err)
	}

	summary := CollectSummary{Folder: folder}
	entries := make([]indexEntry, 0)

	for _, sub := range subreddits {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		c.logger.Info("processing subreddit", "subreddit", sub)
		posts, err := c.fetcher.Listing(ctx, sub)
		if err != nil {
			c.logger.Error("failed to fetch subreddit", "subreddit", sub, "error", err)
			summary.Failed = append(summary.Failed, sub)
			continue
		}

		for i := range posts {
			post := &posts[i]
			if post.Subreddit == "" {
				post.Subreddit = sub
			}

			comments, err := c.fetcher.Comments(ctx, post.Subreddit, post.ID)
			if err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				c.logger.Error("failed to fetch comments", "post_id", post.ID, "error", err)
				comments = nil
			}

			if err := c.repo.SavePost(ctx, post); err != nil {
				return summary, err
			}
			if err := c.repo.SaveComments(ctx, post.ID, comments); err != nil {
				return summary, err
			}

			entry, err := writeSnapshot(folder, *post, comments)
			if err != nil {
				return summary, err
			}
			entries = append(entries, entry)

			summary.Posts++
			summary.Comments += len(comments)
			c.logger.Info("saved post", "post_id", post.ID, "comments", len(comments), "file", entry.Filename)
		}
	}

	if err := writeIndex(folder, now, entries); err != nil {
		return summary, err
	}

	c.logger.Info("collection complete", "posts", summary.Posts, "comments", summary.Comments, "folder", folder)
	return summary, nil
}

// ReadSubreddits читает имена сабреддитов из файла, пропуская пустые строки и строки с //
func ReadSubreddits(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subreddits file: %w", err)
	}
	defer f.Close()

	var subs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		subs = append(subs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subreddits file: %w", err)
	}

	return subs, nil
}

type snapshotComment struct {
	Author      string          `json:"author"`
	ID          string          `json:"id"`
	ParentID    string          `json:"parent_id"`
	CreatedUTC  *float64        `json:"created_utc"`
	CreatedDate string          `json:"created_date"`
	Body        string          `json:"body"`
	Score       int             `json:"score"`
	IsSubmitter bool            `json:"is_submitter"`
	Awards      json.RawMessage `json:"awards,omitempty"`
}

type snapshotPost struct {
	Title       string            `json:"title"`
	Author      string            `json:"author"`
	URL         string            `json:"url"`
	ID          string            `json:"id"`
	CreatedUTC  *float64          `json:"created_utc"`
	CreatedDate string            `json:"created_date"`
	Subreddit   string            `json:"subreddit"`
	Score       int               `json:"score"`
	UpvoteRatio float64           `json:"upvote_ratio"`
	Selftext    string            `json:"selftext"`
	Comments    []snapshotComment `json:"comments"`
}

type indexEntry struct {
	Filename     string   `json:"filename"`
	Subreddit    string   `json:"subreddit"`
	PostID       string   `json:"post_id"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	CreatedUTC   *float64 `json:"created_utc"`
	CreatedDate  string   `json:"created_date"`
	CommentCount int      `json:"comment_count"`
}

func writeSnapshot(folder string, post domain.Post, comments []domain.Comment) (indexEntry, error) {
	snap := snapshotPost{
		Title:       post.Title,
		Author:      post.Author,
		URL:         post.URL,
		ID:          post.ID,
		CreatedUTC:  jsonTimestamp(post.CreatedUTC),
		CreatedDate: snapshotDate(post.CreatedUTC),
		Subreddit:   post.Subreddit,
		Score:       post.Score,
		UpvoteRatio: post.UpvoteRatio,
		Selftext:    post.Selftext,
		Comments:    make([]snapshotComment, 0, len(comments)),
	}
	for _, c := range comments {
		snap.Comments = append(snap.Comments, snapshotComment{
			Author:      c.Author,
			ID:          c.ID,
			ParentID:    c.ParentID,
			CreatedUTC:  jsonTimestamp(c.CreatedUTC),
			CreatedDate: snapshotDate(c.CreatedUTC),
			Body:        c.Body,
			Score:       c.Score,
			IsSubmitter: c.IsSubmitter,
			Awards:      c.Awards,
		})
	}

	filename := fmt.Sprintf("%s_%s.json", safeName(post.Subreddit), safeName(post.ID))
	if err := writeJSON(filepath.Join(folder, filename), snap); err != nil {
		return indexEntry{}, err
	}

	return indexEntry{
		Filename:     filename,
		Subreddit:    post.Subreddit,
		PostID:       post.ID,
		Title:        post.Title,
		URL:          post.URL,
		CreatedUTC:   snap.CreatedUTC,
		CreatedDate:  snap.CreatedDate,
		CommentCount: len(comments),
	}, nil
}

func writeIndex(folder string, now time.Time, entries []indexEntry) error {
	seen := make(map[string]bool)
	subs := make([]string, 0)
	for _, e := range entries {
		if !seen[e.Subreddit] {
			seen[e.Subreddit] = true
			subs = append(subs, e.Subreddit)
		}
	}
	sort.Strings(subs)

	index := struct {
		CollectedDate string       `json:"collected_date"`
		PostCount     int          `json:"post_count"`
		Subreddits    []string     `json:"subreddits"`
		Posts         []indexEntry `json:"posts"`
	}{
		CollectedDate: now.Format(dateLayout),
		PostCount:     len(entries),
		Subreddits:    subs,
		Posts:         entries,
	}

	return writeJSON(filepath.Join(folder, "index.json"), index)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func jsonTimestamp(ts float64) *float64 {
	if !domain.ValidTimestamp(ts) {
		return nil
	}
	return &ts
}

func snapshotDate(ts float64) string {
	if !domain.ValidTimestamp(ts) {
		return ""
	}
	return domain.UnixTime(ts).Format("2006-01-02 15:04:05")
}

// safeName оставляет в имени файла только безопасные символы
func safeName(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
