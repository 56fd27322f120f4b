package usecase

import (
	"context"
	"fmt"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/thread"
)

// ThreadUseCase содержит бизнес-логику чтения сохраненных тредов
type ThreadUseCase struct {
	repo domain.ThreadRepository
}

// NewThreadUseCase создает новый экземпляр ThreadUseCase
func NewThreadUseCase(repo domain.ThreadRepository) *ThreadUseCase {
	return &ThreadUseCase{repo: repo}
}

// List возвращает все посты, старые первыми
func (uc *ThreadUseCase) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := uc.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListBetween возвращает посты из интервала дат
func (uc *ThreadUseCase) ListBetween(ctx context.Context, r DateRange) ([]domain.Post, error) {
	posts, err := uc.repo.PostsBetween(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetTree получает дерево комментариев поста
func (uc *ThreadUseCase) GetTree(ctx context.Context, postID string) ([]domain.CommentTree, error) {
	post, idx, err := uc.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	return thread.Tree(post.ID, idx), nil
}

// Render возвращает документ поста в заданном диалекте
func (uc *ThreadUseCase) Render(ctx context.Context, postID, dialect string) (string, error) {
	d, err := thread.DialectByName(dialect)
	if err != nil {
		return "", err
	}

	post, idx, err := uc.load(ctx, postID)
	if err != nil {
		return "", err
	}

	return thread.FormatThread(*post, idx, d), nil
}

func (uc *ThreadUseCase) load(ctx context.Context, postID string) (*domain.Post, thread.Index, error) {
	post, err := uc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get post: %w", err)
	}

	idx, err := loadIndex(ctx, uc.repo, post.ID)
	if err != nil {
		return nil, nil, err
	}

	return post, idx, nil
}

// loadIndex читает комментарии поста и группирует их по родителю
func loadIndex(ctx context.Context, repo domain.ThreadRepository, postID string) (thread.Index, error) {
	comments, err := repo.CommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments for post %s: %w", postID, err)
	}
	return thread.BuildIndex(comments), nil
}
