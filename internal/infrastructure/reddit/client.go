// Package reddit получает посты и комментарии через публичный JSON API Reddit.
package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oziev02/ThreadDigest/internal/domain"
	"golang.org/x/time/rate"
)

// Options содержит параметры клиента
type Options struct {
	BaseURL           string
	UserAgent         string
	PostsPerSubreddit int
	PostSort          string
	CommentDepth      int
	CommentLimit      int
	RequestInterval   time.Duration
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	MaxRetries        int
}

// Client оборачивает resty клиент с ограничением частоты запросов
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	opts    Options
	logger  *slog.Logger
}

// NewClient создает клиент Reddit API
func NewClient(opts Options, logger *slog.Logger) *Client {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.PostSort == "" {
		opts.PostSort = "new"
	}
	if opts.CommentDepth < 0 {
		opts.CommentDepth = 0
	}

	limit := rate.Inf
	if opts.RequestInterval > 0 {
		limit = rate.Every(opts.RequestInterval)
	}

	c := &Client{
		limiter: rate.NewLimiter(limit, 1),
		opts:    opts,
		logger:  logger,
	}

	c.http = resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.InitialBackoff).
		SetRetryMaxWaitTime(opts.MaxBackoff).
		SetRetryAfter(retryAfter).
		AddRetryCondition(c.shouldRetry)

	return c
}

// shouldRetry повторяет запрос при сетевой ошибке, 429 и 5xx
func (c *Client) shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		c.logger.Warn("reddit request failed, retrying", "error", err)
		return true
	}
	code := resp.StatusCode()
	if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
		c.logger.Warn("reddit request throttled, retrying",
			"status", code,
			"url", resp.Request.URL,
			"attempt", resp.Request.Attempt,
		)
		return true
	}
	return false
}

// retryAfter учитывает заголовок Retry-After; ноль оставляет экспоненциальную паузу resty
func retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	if resp == nil {
		return 0, nil
	}
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header().Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0, nil
	}
	return time.Duration(secs) * time.Second, nil
}

// Listing возвращает посты сабреддита в заданной сортировке
func (c *Client) Listing(ctx context.Context, subreddit string) ([]domain.Post, error) {
	req := c.http.R().
		SetPathParams(map[string]string{"sub": subreddit, "sort": c.opts.PostSort}).
		SetQueryParam("limit", strconv.Itoa(c.opts.PostsPerSubreddit))
	if c.opts.PostSort == "top" {
		req.SetQueryParam("t", "month")
	}

	var page listing
	if err := c.get(ctx, req, "/r/{sub}/{sort}.json", &page); err != nil {
		return nil, fmt.Errorf("failed to fetch r/%s: %w", subreddit, err)
	}

	posts := make([]domain.Post, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var p postData
		if err := json.Unmarshal(child.Data, &p); err != nil {
			c.logger.Warn("skipping malformed post", "subreddit", subreddit, "error", err)
			continue
		}
		if p.ID == "" {
			continue
		}
		posts = append(posts, c.toPost(p))
	}

	c.logger.Info("fetched posts", "subreddit", subreddit, "count", len(posts))
	return posts, nil
}

// Comments возвращает комментарии поста плоским списком с указателями на родителя
func (c *Client) Comments(ctx context.Context, subreddit, postID string) ([]domain.Comment, error) {
	req := c.http.R().
		SetPathParams(map[string]string{"sub": subreddit, "id": postID}).
		SetQueryParams(map[string]string{
			"limit": strconv.Itoa(c.opts.CommentLimit),
			"depth": strconv.Itoa(c.opts.CommentDepth),
			"sort":  "top",
		})

	var pages []listing
	if err := c.get(ctx, req, "/r/{sub}/comments/{id}.json", &pages); err != nil {
		return nil, fmt.Errorf("failed to fetch comments for %s: %w", postID, err)
	}
	if len(pages) < 2 {
		return nil, fmt.Errorf("malformed comments response for %s: %d listings", postID, len(pages))
	}

	comments := make([]domain.Comment, 0)
	for _, child := range pages[1].Data.Children {
		comments = c.flatten(comments, child, postID, 1)
	}

	c.logger.Info("fetched comments", "post_id", postID, "count", len(comments), "max_depth", c.opts.CommentDepth)
	return comments, nil
}

func (c *Client) get(ctx context.Context, req *resty.Request, path string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := req.SetContext(ctx).Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// flatten добавляет комментарий и его ответы до максимальной глубины.
// Заглушки "more" пропускаются.
func (c *Client) flatten(acc []domain.Comment, t thing, postID string, depth int) []domain.Comment {
	if t.Kind != "t1" {
		return acc
	}

	var data commentData
	if err := json.Unmarshal(t.Data, &data); err != nil {
		c.logger.Warn("skipping malformed comment", "post_id", postID, "error", err)
		return acc
	}

	acc = append(acc, domain.Comment{
		ID:          data.ID,
		PostID:      postID,
		ParentID:    StripKind(data.ParentID),
		Author:      data.Author,
		Body:        data.Body,
		CreatedUTC:  data.CreatedUTC,
		Score:       data.Score,
		IsSubmitter: data.IsSubmitter,
		Awards:      data.AllAwardings,
	})

	if depth >= c.opts.CommentDepth {
		return acc
	}

	replies, ok := data.replies()
	if !ok {
		return acc
	}
	for _, child := range replies.Data.Children {
		acc = c.flatten(acc, child, postID, depth+1)
	}

	return acc
}

func (c *Client) toPost(p postData) domain.Post {
	return domain.Post{
		ID:          p.ID,
		Subreddit:   p.Subreddit,
		Title:       p.Title,
		Author:      p.Author,
		URL:         c.opts.BaseURL + p.Permalink,
		CreatedUTC:  p.CreatedUTC,
		Score:       p.Score,
		UpvoteRatio: p.UpvoteRatio,
		Selftext:    p.Selftext,
	}
}

// StripKind убирает префиксы типа t1_ и t3_ из полного имени объекта
func StripKind(fullname string) string {
	if len(fullname) > 3 && fullname[0] == 't' && fullname[2] == '_' {
		return fullname[3:]
	}
	return fullname
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Selftext    string  `json:"selftext"`
}

type commentData struct {
	ID           string          `json:"id"`
	ParentID     string          `json:"parent_id"`
	Author       string          `json:"author"`
	Body         string          `json:"body"`
	CreatedUTC   float64         `json:"created_utc"`
	Score        int             `json:"score"`
	IsSubmitter  bool            `json:"is_submitter"`
	AllAwardings json.RawMessage `json:"all_awardings"`
	Replies      json.RawMessage `json:"replies"`
}

// replies разбирает поле replies: пустая строка, если ответов нет, иначе listing
func (d commentData) replies() (listing, bool) {
	raw := bytes.TrimSpace(d.Replies)
	if len(raw) == 0 || raw[0] != '{' {
		return listing{}, false
	}
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return listing{}, false
	}
	return l, true
}
