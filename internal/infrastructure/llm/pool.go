package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNoBackendAvailable возвращается, когда ни один бэкенд не ответил
var ErrNoBackendAvailable = errors.New("no LLM backend available")

// Completer - один бэкенд, способный выполнить chat completion
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Backend связывает имя для логов с клиентом
type Backend struct {
	Name   string
	Client Completer
}

// Completion - ответ модели и имя бэкенда, который его дал
type Completion struct {
	Text    string
	Backend string
}

// PoolOptions задает политику переключения
type PoolOptions struct {
	// MaxFailures - после стольких подряд сбоев бэкенд больше не используется
	MaxFailures int
	// RetryWait - пауза перед попыткой следующего бэкенда
	RetryWait time.Duration
}

// Pool перебирает бэкенды по кругу, начиная с последнего успешного
type Pool struct {
	mu       sync.Mutex
	backends []Backend
	failures []int
	current  int
	opts     PoolOptions
	logger   *slog.Logger
}

// NewPool создает пул из готовых бэкендов
func NewPool(backends []Backend, opts PoolOptions, logger *slog.Logger) *Pool {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 1
	}
	return &Pool{
		backends: backends,
		failures: make([]int, len(backends)),
		opts:     opts,
		logger:   logger,
	}
}

// NewPoolFromConfigs создает пул из записей models.json
func NewPoolFromConfigs(configs []BackendConfig, timeout time.Duration, opts PoolOptions, logger *slog.Logger) *Pool {
	backends := make([]Backend, 0, len(configs))
	for _, cfg := range configs {
		backends = append(backends, Backend{Name: cfg.DisplayName, Client: NewChatClient(cfg, timeout)})
	}
	return NewPool(backends, opts, logger)
}

// Len возвращает количество бэкендов в пуле
func (p *Pool) Len() int {
	return len(p.backends)
}

// Complete пробует бэкенды по очереди, пропуская исчерпавшие лимит сбоев.
// Успешный бэкенд становится текущим, его счетчик сбоев обнуляется.
func (p *Pool) Complete(ctx context.Context, system, user string) (Completion, error) {
	n := len(p.backends)
	if n == 0 {
		return Completion{}, ErrNoBackendAvailable
	}

	p.mu.Lock()
	start := p.current
	p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < n; attempt++ {
		idx := (start + attempt) % n
		backend := p.backends[idx]

		if p.exhausted(idx) {
			p.logger.Warn("skipping LLM backend after repeated failures", "backend", backend.Name)
			continue
		}

		p.logger.Info("calling LLM backend", "backend", backend.Name, "prompt_chars", len(user))
		text, err := backend.Client.Complete(ctx, system, user)
		if err == nil {
			p.mu.Lock()
			p.failures[idx] = 0
			p.current = idx
			p.mu.Unlock()
			return Completion{Text: text, Backend: backend.Name}, nil
		}

		lastErr = err
		failures := p.recordFailure(idx)
		p.logger.Warn("LLM backend call failed", "backend", backend.Name, "failures", failures, "error", err)

		if ctx.Err() != nil {
			return Completion{}, ctx.Err()
		}

		if attempt < n-1 && p.opts.RetryWait > 0 {
			select {
			case <-ctx.Done():
				return Completion{}, ctx.Err()
			case <-time.After(p.opts.RetryWait):
			}
		}
	}

	if lastErr != nil {
		return Completion{}, fmt.Errorf("%w: %v", ErrNoBackendAvailable, lastErr)
	}
	return Completion{}, ErrNoBackendAvailable
}

func (p *Pool) exhausted(idx int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures[idx] >= p.opts.MaxFailures
}

func (p *Pool) recordFailure(idx int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[idx]++
	return p.failures[idx]
}
