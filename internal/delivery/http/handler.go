package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/usecase"
)

// ThreadHandler обрабатывает HTTP запросы для постов и тредов
type ThreadHandler struct {
	useCase *usecase.ThreadUseCase
}

// NewThreadHandler создает новый экземпляр ThreadHandler
func NewThreadHandler(useCase *usecase.ThreadUseCase) *ThreadHandler {
	return &ThreadHandler{useCase: useCase}
}

// PostResponse DTO для ответа с постом
type PostResponse struct {
	ID          string   `json:"id"`
	Subreddit   string   `json:"subreddit"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	URL         string   `json:"url"`
	CreatedUTC  *float64 `json:"created_utc"`
	CreatedAt   string   `json:"created_at,omitempty"`
	Score       int      `json:"score"`
	UpvoteRatio float64  `json:"upvote_ratio"`
	Selftext    string   `json:"selftext"`
}

// CommentResponse DTO для ответа с комментарием
type CommentResponse struct {
	ID          string   `json:"id"`
	ParentID    string   `json:"parent_id"`
	Author      string   `json:"author"`
	Body        string   `json:"body"`
	CreatedUTC  *float64 `json:"created_utc"`
	CreatedAt   string   `json:"created_at,omitempty"`
	Score       int      `json:"score"`
	IsSubmitter bool     `json:"is_submitter"`
}

// CommentTreeResponse DTO для ответа с деревом комментариев
type CommentTreeResponse struct {
	Comment  CommentResponse       `json:"comment"`
	Children []CommentTreeResponse `json:"children,omitempty"`
}

// PostsListResponse DTO для списка постов
type PostsListResponse struct {
	Posts []PostResponse `json:"posts"`
	Total int            `json:"total"`
}

// CommentsResponse DTO для дерева комментариев поста
type CommentsResponse struct {
	PostID   string                `json:"post_id"`
	Comments []CommentTreeResponse `json:"comments"`
}

// ListPosts обрабатывает GET /posts
func (h *ThreadHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var posts []domain.Post
	var err error
	if from == "" && to == "" {
		posts, err = h.useCase.List(r.Context())
	} else {
		if from == "" {
			from = to
		}
		dr, perr := usecase.ParseDateRange(from, to)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		posts, err = h.useCase.ListBetween(r.Context(), dr)
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := PostsListResponse{
		Posts: make([]PostResponse, 0, len(posts)),
		Total: len(posts),
	}
	for _, p := range posts {
		response.Posts = append(response.Posts, toPostResponse(p))
	}

	writeJSON(w, response)
}

// GetTree обрабатывает GET /posts/{id}/comments
func (h *ThreadHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")

	trees, err := h.useCase.GetTree(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, CommentsResponse{
		PostID:   postID,
		Comments: toCommentTreeResponseList(trees),
	})
}

// Render обрабатывает GET /posts/{id}/thread?dialect=plain|markdown|flat
func (h *ThreadHandler) Render(w http.ResponseWriter, r *http.Request) {
	dialect := r.URL.Query().Get("dialect")
	if dialect == "" {
		dialect = "markdown"
	}

	text, err := h.useCase.Render(r.Context(), r.PathValue("id"), dialect)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		http.Error(w, domain.ErrPostNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrUnknownDialect):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// toPostResponse преобразует domain.Post в PostResponse
func toPostResponse(p domain.Post) PostResponse {
	ts, at := timestampFields(p.CreatedUTC)
	return PostResponse{
		ID:          p.ID,
		Subreddit:   p.Subreddit,
		Title:       p.Title,
		Author:      p.Author,
		URL:         p.URL,
		CreatedUTC:  ts,
		CreatedAt:   at,
		Score:       p.Score,
		UpvoteRatio: p.UpvoteRatio,
		Selftext:    p.Selftext,
	}
}

// toCommentResponse преобразует domain.Comment в CommentResponse
func toCommentResponse(c domain.Comment) CommentResponse {
	ts, at := timestampFields(c.CreatedUTC)
	return CommentResponse{
		ID:          c.ID,
		ParentID:    c.ParentID,
		Author:      c.Author,
		Body:        c.Body,
		CreatedUTC:  ts,
		CreatedAt:   at,
		Score:       c.Score,
		IsSubmitter: c.IsSubmitter,
	}
}

// toCommentTreeResponse преобразует domain.CommentTree в CommentTreeResponse
func toCommentTreeResponse(tree domain.CommentTree) CommentTreeResponse {
	response := CommentTreeResponse{
		Comment:  toCommentResponse(tree.Comment),
		Children: make([]CommentTreeResponse, 0, len(tree.Children)),
	}

	for _, child := range tree.Children {
		response.Children = append(response.Children, toCommentTreeResponse(child))
	}

	return response
}

// toCommentTreeResponseList преобразует список domain.CommentTree в список CommentTreeResponse
func toCommentTreeResponseList(trees []domain.CommentTree) []CommentTreeResponse {
	responses := make([]CommentTreeResponse, 0, len(trees))
	for _, tree := range trees {
		responses = append(responses, toCommentTreeResponse(tree))
	}
	return responses
}

// timestampFields отдает null вместо некорректной метки времени
func timestampFields(ts float64) (*float64, string) {
	if !domain.ValidTimestamp(ts) {
		return nil, ""
	}
	return &ts, domain.UnixTime(ts).Format(time.RFC3339)
}
