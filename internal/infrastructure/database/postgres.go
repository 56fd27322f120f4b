package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oziev02/ThreadDigest/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS posts (
		id           TEXT PRIMARY KEY,
		subreddit    TEXT NOT NULL DEFAULT '',
		title        TEXT NOT NULL DEFAULT '',
		author       TEXT NOT NULL DEFAULT '',
		url          TEXT NOT NULL DEFAULT '',
		created_utc  DOUBLE PRECISION,
		score        INTEGER NOT NULL DEFAULT 0,
		upvote_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
		selftext     TEXT NOT NULL DEFAULT '',
		fetched_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS comments (
		id           TEXT PRIMARY KEY,
		post_id      TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		parent_id    TEXT NOT NULL,
		author       TEXT NOT NULL DEFAULT '',
		body         TEXT NOT NULL DEFAULT '',
		created_utc  DOUBLE PRECISION,
		score        INTEGER NOT NULL DEFAULT 0,
		is_submitter BOOLEAN NOT NULL DEFAULT FALSE,
		awards       JSONB
	);

	CREATE INDEX IF NOT EXISTS idx_posts_created_utc ON posts (created_utc);
	CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments (post_id);
`

// PostgresRepository реализует ThreadRepository для PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создает новый экземпляр PostgresRepository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// InitSchema создает таблицы, если их еще нет
func (r *PostgresRepository) InitSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

// SavePost сохраняет пост, перезаписывая существующую запись
func (r *PostgresRepository) SavePost(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, subreddit, title, author, url, created_utc, score, upvote_ratio, selftext, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO UPDATE SET
			subreddit = EXCLUDED.subreddit,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			url = EXCLUDED.url,
			created_utc = EXCLUDED.created_utc,
			score = EXCLUDED.score,
			upvote_ratio = EXCLUDED.upvote_ratio,
			selftext = EXCLUDED.selftext,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Subreddit,
		post.Title,
		post.Author,
		post.URL,
		nullableTimestamp(post.CreatedUTC),
		post.Score,
		post.UpvoteRatio,
		post.Selftext,
	)
	if err != nil {
		return fmt.Errorf("failed to save post %s: %w", post.ID, err)
	}

	return nil
}

// SaveComments сохраняет комментарии поста одной транзакцией
func (r *PostgresRepository) SaveComments(ctx context.Context, postID string, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	query := `
		INSERT INTO comments (id, post_id, parent_id, author, body, created_utc, score, is_submitter, awards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			post_id = EXCLUDED.post_id,
			parent_id = EXCLUDED.parent_id,
			author = EXCLUDED.author,
			body = EXCLUDED.body,
			created_utc = EXCLUDED.created_utc,
			score = EXCLUDED.score,
			is_submitter = EXCLUDED.is_submitter,
			awards = EXCLUDED.awards
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, c := range comments {
		var awards []byte
		if len(c.Awards) > 0 {
			awards = c.Awards
		}
		batch.Queue(query,
			c.ID,
			postID,
			c.ParentID,
			c.Author,
			c.Body,
			nullableTimestamp(c.CreatedUTC),
			c.Score,
			c.IsSubmitter,
			awards,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range comments {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to save comments for post %s: %w", postID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit comments: %w", err)
	}

	return nil
}

// GetPost получает пост по ID
func (r *PostgresRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	query := `
		SELECT id, subreddit, title, author, url, created_utc, score, upvote_ratio, selftext
		FROM posts
		WHERE id = $1
	`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// ListPosts возвращает все посты, старые первыми
func (r *PostgresRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	query := `
		SELECT id, subreddit, title, author, url, created_utc, score, upvote_ratio, selftext
		FROM posts
		ORDER BY created_utc ASC NULLS LAST, id ASC
	`

	return r.queryPosts(ctx, query)
}

// PostsBetween возвращает посты, созданные в интервале [from, to], по возрастанию даты
func (r *PostgresRepository) PostsBetween(ctx context.Context, from, to time.Time) ([]domain.Post, error) {
	query := `
		SELECT id, subreddit, title, author, url, created_utc, score, upvote_ratio, selftext
		FROM posts
		WHERE created_utc >= $1 AND created_utc <= $2
		ORDER BY created_utc ASC, id ASC
	`

	return r.queryPosts(ctx, query, float64(from.Unix()), float64(to.Unix()))
}

// CommentsByPost возвращает все комментарии поста плоским списком
func (r *PostgresRepository) CommentsByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	query := `
		SELECT id, post_id, parent_id, author, body, created_utc, score, is_submitter, awards
		FROM comments
		WHERE post_id = $1
		ORDER BY created_utc ASC NULLS FIRST, id ASC
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		var created *float64
		var awards []byte

		err := rows.Scan(
			&c.ID,
			&c.PostID,
			&c.ParentID,
			&c.Author,
			&c.Body,
			&created,
			&c.Score,
			&c.IsSubmitter,
			&awards,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		c.CreatedUTC = timestampOrNaN(created)
		if len(awards) > 0 {
			c.Awards = awards
		}
		comments = append(comments, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return comments, nil
}

func (r *PostgresRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return posts, nil
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var post domain.Post
	var created *float64

	err := row.Scan(
		&post.ID,
		&post.Subreddit,
		&post.Title,
		&post.Author,
		&post.URL,
		&created,
		&post.Score,
		&post.UpvoteRatio,
		&post.Selftext,
	)
	if err != nil {
		return domain.Post{}, err
	}

	post.CreatedUTC = timestampOrNaN(created)
	return post, nil
}

// nullableTimestamp сохраняет некорректные метки времени как NULL
func nullableTimestamp(ts float64) *float64 {
	if !domain.ValidTimestamp(ts) {
		return nil
	}
	return &ts
}

func timestampOrNaN(ts *float64) float64 {
	if ts == nil {
		return math.NaN()
	}
	return *ts
}
