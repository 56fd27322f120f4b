package http

import (
	"net/http"

	"github.com/oziev02/ThreadDigest/internal/usecase"
)

// NewRouter создает HTTP роутер
func NewRouter(threadUseCase *usecase.ThreadUseCase) *http.ServeMux {
	handler := NewThreadHandler(threadUseCase)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /posts", handler.ListPosts)
	mux.HandleFunc("GET /posts/{id}/comments", handler.GetTree)
	mux.HandleFunc("GET /posts/{id}/thread", handler.Render)

	return mux
}
