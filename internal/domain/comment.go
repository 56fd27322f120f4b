package domain

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// Значения-заглушки, которыми площадка помечает удалённый контент
const (
	DeletedSentinel = "[deleted]"
	RemovedSentinel = "[removed]"
)

// Post представляет пост, корень дерева комментариев
type Post struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Selftext    string  `json:"selftext"`
}

// Comment представляет комментарий с указателем на родителя.
// ParentID равен ID поста для комментариев верхнего уровня.
type Comment struct {
	ID          string          `json:"id"`
	PostID      string          `json:"post_id"`
	ParentID    string          `json:"parent_id"`
	Author      string          `json:"author"`
	Body        string          `json:"body"`
	CreatedUTC  float64         `json:"created_utc"`
	Score       int             `json:"score"`
	IsSubmitter bool            `json:"is_submitter"`
	Awards      json.RawMessage `json:"awards,omitempty"`
}

// CommentTree представляет комментарий со всеми вложенными комментариями
type CommentTree struct {
	Comment  Comment       `json:"comment"`
	Children []CommentTree `json:"children,omitempty"`
}

// ValidTimestamp сообщает, можно ли отобразить метку времени как дату
func ValidTimestamp(ts float64) bool {
	if math.IsNaN(ts) || math.IsInf(ts, 0) {
		return false
	}
	// за пределами этого диапазона time.Unix перестаёт быть осмысленным
	return ts >= -62135596800 && ts <= 253402300799
}

// UnixTime переводит секунды эпохи в time.Time в UTC
func UnixTime(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// ThreadRepository определяет интерфейс хранилища постов и комментариев
type ThreadRepository interface {
	SavePost(ctx context.Context, post *Post) error
	SaveComments(ctx context.Context, postID string, comments []Comment) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context) ([]Post, error)
	PostsBetween(ctx context.Context, from, to time.Time) ([]Post, error)
	CommentsByPost(ctx context.Context, postID string) ([]Comment, error)
}
