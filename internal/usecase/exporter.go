package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/thread"
	"golang.org/x/sync/errgroup"
)

// Exporter выгружает посты за интервал дат в текстовый документ
type Exporter struct {
	repo        domain.ThreadRepository
	concurrency int
	logger      *slog.Logger
}

// NewExporter создает новый экземпляр Exporter
func NewExporter(repo domain.ThreadRepository, concurrency int, logger *slog.Logger) *Exporter {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Exporter{repo: repo, concurrency: concurrency, logger: logger}
}

// Export пишет в w документы всех постов интервала в порядке даты создания.
// Возвращает количество выгруженных постов.
func (e *Exporter) Export(ctx context.Context, w io.Writer, r DateRange, d thread.Dialect) (int, error) {
	docs, err := renderPosts(ctx, e.repo, r, d, e.concurrency)
	if err != nil {
		return 0, err
	}

	for i, doc := range docs {
		if i > 0 {
			if _, err := io.WriteString(w, d.Separator); err != nil {
				return i, fmt.Errorf("failed to write export: %w", err)
			}
		}
		if _, err := io.WriteString(w, doc); err != nil {
			return i, fmt.Errorf("failed to write export: %w", err)
		}
	}

	e.logger.Info("export complete", "posts", len(docs), "dialect", d.Name, "range", r.String())
	return len(docs), nil
}

// renderPosts рендерит посты интервала параллельно, сохраняя их порядок
func renderPosts(ctx context.Context, repo domain.ThreadRepository, r DateRange, d thread.Dialect, limit int) ([]string, error) {
	posts, err := repo.PostsBetween(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, domain.ErrNoPosts
	}

	docs := make([]string, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range posts {
		i := i
		g.Go(func() error {
			idx, err := loadIndex(gctx, repo, posts[i].ID)
			if err != nil {
				return err
			}
			docs[i] = thread.FormatThread(posts[i], idx, d)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}
