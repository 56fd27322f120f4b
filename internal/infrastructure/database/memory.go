package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
)

// MemoryRepository хранит посты и комментарии в памяти процесса
type MemoryRepository struct {
	mu       sync.RWMutex
	posts    map[string]domain.Post
	comments map[string][]domain.Comment
}

// NewMemoryRepository создает пустое хранилище в памяти
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:    make(map[string]domain.Post),
		comments: make(map[string][]domain.Comment),
	}
}

// SavePost сохраняет пост, перезаписывая существующую запись
func (r *MemoryRepository) SavePost(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts[post.ID] = *post
	return nil
}

// SaveComments добавляет комментарии поста.
// Комментарий с уже известным ID заменяется на месте.
func (r *MemoryRepository) SaveComments(_ context.Context, postID string, comments []domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.comments[postID]
	pos := make(map[string]int, len(stored))
	for i, c := range stored {
		pos[c.ID] = i
	}

	for _, c := range comments {
		c.PostID = postID
		if i, ok := pos[c.ID]; ok {
			stored[i] = c
			continue
		}
		pos[c.ID] = len(stored)
		stored = append(stored, c)
	}

	r.comments[postID] = stored
	return nil
}

// GetPost получает пост по ID
func (r *MemoryRepository) GetPost(_ context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return &post, nil
}

// ListPosts возвращает все посты, старые первыми
func (r *MemoryRepository) ListPosts(_ context.Context) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	sortPosts(posts)
	return posts, nil
}

// PostsBetween возвращает посты, созданные в интервале [from, to], по возрастанию даты
func (r *MemoryRepository) PostsBetween(_ context.Context, from, to time.Time) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo, hi := float64(from.Unix()), float64(to.Unix())
	posts := make([]domain.Post, 0)
	for _, p := range r.posts {
		if !domain.ValidTimestamp(p.CreatedUTC) {
			continue
		}
		if p.CreatedUTC >= lo && p.CreatedUTC <= hi {
			posts = append(posts, p)
		}
	}
	sortPosts(posts)
	return posts, nil
}

// CommentsByPost возвращает копию комментариев поста в порядке сохранения
func (r *MemoryRepository) CommentsByPost(_ context.Context, postID string) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.comments[postID]
	comments := make([]domain.Comment, len(stored))
	copy(comments, stored)
	return comments, nil
}

// sortPosts упорядочивает посты по дате, посты без даты в конце
func sortPosts(posts []domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		vi, vj := domain.ValidTimestamp(posts[i].CreatedUTC), domain.ValidTimestamp(posts[j].CreatedUTC)
		if vi != vj {
			return vi
		}
		if vi && posts[i].CreatedUTC != posts[j].CreatedUTC {
			return posts[i].CreatedUTC < posts[j].CreatedUTC
		}
		return posts[i].ID < posts[j].ID
	})
}
