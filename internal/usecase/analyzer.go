package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/llm"
	"github.com/oziev02/ThreadDigest/internal/thread"
)

// AnalysisSystemPrompt - системное сообщение для анализа тредов
const AnalysisSystemPrompt = "You are an expert AI assistant. You follow instructions very well. " +
	"Analyze the provided extracted Reddit posts and comments to answer the user's question."

// DefaultQuestion используется, если вопрос не задан явно
const DefaultQuestion = "List any discussed AI models and what types of tasks people are using them for. " +
	"Be specific about model variants. For each model write one line in the form " +
	"'model-name: N people said it is good for X, M people said it is bad at Y'. " +
	"Finish with a notes section covering anything else of interest, including programming languages " +
	"that particular models are said to handle well or badly."

// Completer выполняет chat completion через пул LLM бэкендов
type Completer interface {
	Complete(ctx context.Context, system, user string) (llm.Completion, error)
}

// AnalysisSummary описывает результат анализа
type AnalysisSummary struct {
	Posts  int
	Chunks int
	Failed int
}

// Analyzer отправляет треды в LLM пачками и собирает markdown отчет
type Analyzer struct {
	repo       domain.ThreadRepository
	llm        Completer
	chunkSize  int
	chunkPause time.Duration
	logger     *slog.Logger
}

// NewAnalyzer создает новый экземпляр Analyzer
func NewAnalyzer(repo domain.ThreadRepository, completer Completer, chunkSize int, chunkPause time.Duration, logger *slog.Logger) *Analyzer {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &Analyzer{
		repo:       repo,
		llm:        completer,
		chunkSize:  chunkSize,
		chunkPause: chunkPause,
		logger:     logger,
	}
}

// Analyze задает вопрос по всем постам интервала и пишет отчет в w.
// Сбой отдельной пачки попадает в отчет и не прерывает анализ.
func (a *Analyzer) Analyze(ctx context.Context, w io.Writer, r DateRange, question string) (AnalysisSummary, error) {
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion
	}

	docs, err := renderPosts(ctx, a.repo, r, thread.PlainIndented, 1)
	if errors.Is(err, domain.ErrNoPosts) {
		_, werr := fmt.Fprintf(w, "# LLM Analysis of Reddit Posts\n\n**Date Range:** %s to %s\n**User Question:** %q\n**System Prompt:** %q\n\n---\n\nNo posts found in the specified date range.\n",
			r.From.Format(dateLayout), r.To.Format(dateLayout), question, AnalysisSystemPrompt)
		if werr != nil {
			return AnalysisSummary{}, fmt.Errorf("failed to write report: %w", werr)
		}
		return AnalysisSummary{}, err
	}
	if err != nil {
		return AnalysisSummary{}, err
	}

	total := len(docs)
	summary := AnalysisSummary{Posts: total, Chunks: (total + a.chunkSize - 1) / a.chunkSize}

	var b strings.Builder
	fmt.Fprintf(&b, "# LLM Analysis of Reddit Posts\n\n**Date Range:** %s to %s\n", r.From.Format(dateLayout), r.To.Format(dateLayout))
	fmt.Fprintf(&b, "**User Question:**\n```\n%s\n```\n\n", question)
	fmt.Fprintf(&b, "**System Prompt:**\n```\n%s\n```\n\n", AnalysisSystemPrompt)
	fmt.Fprintf(&b, "**Processed %d posts in %d API calls (chunks).**\n---\n\n## Analysis Results\n\n", total, summary.Chunks)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return summary, fmt.Errorf("failed to write report: %w", err)
	}

	for start := 0; start < total; start += a.chunkSize {
		end := start + a.chunkSize
		if end > total {
			end = total
		}
		chunk := start/a.chunkSize + 1

		var data strings.Builder
		for _, doc := range docs[start:end] {
			data.WriteString(doc)
			data.WriteString("\n")
		}
		prompt := fmt.Sprintf("%s\n\nHere is the Reddit data to analyze:\n\n%s", question, data.String())

		a.logger.Info("analyzing chunk", "chunk", chunk, "chunks", summary.Chunks, "posts_from", start+1, "posts_to", end, "prompt_chars", len(prompt))

		var section string
		res, err := a.llm.Complete(ctx, AnalysisSystemPrompt, prompt)
		switch {
		case ctx.Err() != nil:
			return summary, ctx.Err()
		case err != nil:
			summary.Failed++
			a.logger.Error("chunk analysis failed", "chunk", chunk, "error", err)
			section = fmt.Sprintf("### FAILED to get response for posts %d-%d (chunk %d of %d). All configured models attempted or reached max failures.\n\n",
				start+1, end, chunk, summary.Chunks)
		default:
			section = fmt.Sprintf("### API call to model `%s`, for posts %d-%d (chunk %d of %d), response:\n\n```text\n%s\n```\n\n",
				res.Backend, start+1, end, chunk, summary.Chunks, res.Text)
		}

		if _, err := io.WriteString(w, section); err != nil {
			return summary, fmt.Errorf("failed to write report: %w", err)
		}

		if end < total && a.chunkPause > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(a.chunkPause):
			}
		}
	}

	a.logger.Info("analysis complete", "posts", summary.Posts, "chunks", summary.Chunks, "failed", summary.Failed)
	return summary, nil
}
