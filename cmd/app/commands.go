package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oziev02/ThreadDigest/internal/domain"
	"github.com/oziev02/ThreadDigest/internal/infrastructure/reddit"
	"github.com/oziev02/ThreadDigest/internal/thread"
	"github.com/oziev02/ThreadDigest/internal/usecase"
)

const (
	analysisChunkPause    = 2 * time.Second
	defaultRepliesFile    = "suggested_replies.md"
	defaultExportDialect  = "markdown"
	dateArgsUsage         = "START_DATE [END_DATE]"
	dateArgsFormatComment = "dates use the YYYY-MM-DD format, END_DATE defaults to START_DATE"
)

func newFetchCmd(logger *slog.Logger) *cobra.Command {
	var subredditsFile string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "collect posts and comments from the configured subreddits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			if subredditsFile == "" {
				subredditsFile = a.cfg.Reddit.SubredditsFile
			}
			subs, err := usecase.ReadSubreddits(subredditsFile)
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				return fmt.Errorf("no subreddits listed in %s", subredditsFile)
			}

			rc := a.cfg.Reddit
			client := reddit.NewClient(reddit.Options{
				BaseURL:           rc.BaseURL,
				UserAgent:         rc.UserAgent,
				PostsPerSubreddit: rc.PostsPerSubreddit,
				PostSort:          rc.PostSort,
				CommentDepth:      rc.CommentDepth,
				CommentLimit:      rc.CommentLimit,
				RequestInterval:   rc.RequestInterval,
				InitialBackoff:    rc.InitialBackoff,
				MaxBackoff:        rc.MaxBackoff,
				MaxRetries:        rc.MaxRetries,
			}, logger)

			summary, err := usecase.NewCollector(client, a.repo, rc.DataFolder, logger).Run(cmd.Context(), subs)
			if err != nil {
				return err
			}

			logger.Info("collection finished",
				"folder", summary.Folder,
				"posts", summary.Posts,
				"comments", summary.Comments,
				"failed", summary.Failed,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&subredditsFile, "subreddits", "", "file with one subreddit per line (defaults to SUBREDDITS_FILE)")
	return cmd
}

func newExportCmd(logger *slog.Logger) *cobra.Command {
	var (
		dialectName string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "export " + dateArgsUsage,
		Short: "render stored threads for a date range as text",
		Long:  dateArgsFormatComment,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dr, err := dateRangeFromArgs(args)
			if err != nil {
				return err
			}
			d, err := thread.DialectByName(dialectName)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			w, closeOut, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()

			n, err := usecase.NewExporter(a.repo, a.cfg.Export.Concurrency, logger).Export(cmd.Context(), w, dr, d)
			if errors.Is(err, domain.ErrNoPosts) {
				logger.Info("no posts found", "range", dr.String())
				return nil
			}
			if err != nil {
				return err
			}

			logger.Info("export finished", "range", dr.String(), "posts", n, "dialect", d.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&dialectName, "dialect", defaultExportDialect, "output dialect: plain, markdown or flat")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout)")
	return cmd
}

func newAnalyzeCmd(logger *slog.Logger) *cobra.Command {
	var (
		question   string
		chunkSize  int
		modelsFile string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "analyze " + dateArgsUsage,
		Short: "ask the configured LLMs a question about stored threads",
		Long:  dateArgsFormatComment,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dr, err := dateRangeFromArgs(args)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			if modelsFile != "" {
				a.cfg.LLM.ModelsFile = modelsFile
			}
			if chunkSize <= 0 {
				chunkSize = a.cfg.Export.ChunkSize
			}

			pool, err := a.llmPool()
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()

			analyzer := usecase.NewAnalyzer(a.repo, pool, chunkSize, analysisChunkPause, logger)
			summary, err := analyzer.Analyze(cmd.Context(), w, dr, question)
			if errors.Is(err, domain.ErrNoPosts) {
				logger.Info("no posts found", "range", dr.String())
				return nil
			}
			if err != nil {
				return err
			}

			logger.Info("analysis finished",
				"range", dr.String(),
				"posts", summary.Posts,
				"chunks", summary.Chunks,
				"failed", summary.Failed,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&question, "prompt", usecase.DefaultQuestion, "question to ask about the data")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "posts per LLM call (defaults to DEFAULT_POSTS_PER_API_CALL)")
	cmd.Flags().StringVar(&modelsFile, "models-json", "", "LLM backends file (defaults to MODELS_JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "report file (defaults to stdout)")
	return cmd
}

func newSuggestCmd(logger *slog.Logger) *cobra.Command {
	var (
		modelsFile string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "suggest " + dateArgsUsage,
		Short: "draft replies for stored threads and append them to a review file",
		Long:  dateArgsFormatComment,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dr, err := dateRangeFromArgs(args)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			if modelsFile != "" {
				a.cfg.LLM.ModelsFile = modelsFile
			}
			pool, err := a.llmPool()
			if err != nil {
				return err
			}

			f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", output, err)
			}
			defer f.Close()

			suggester := usecase.NewReplySuggester(a.repo, pool, logger)

			info, err := f.Stat()
			if err != nil {
				return err
			}
			if info.Size() == 0 {
				if err := suggester.WriteHeader(f); err != nil {
					return err
				}
			}

			n, err := suggester.Suggest(cmd.Context(), f, dr)
			if errors.Is(err, domain.ErrNoPosts) {
				logger.Info("no posts found", "range", dr.String())
				return nil
			}
			if err != nil {
				return err
			}

			logger.Info("replies appended", "file", output, "posts", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelsFile, "models-json", "", "LLM backends file (defaults to MODELS_JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", defaultRepliesFile, "file to append suggestions to")
	return cmd
}

func newListCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list [START_DATE [END_DATE]]",
		Short: "list stored posts oldest first",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.close()

			uc := usecase.NewThreadUseCase(a.repo)

			var posts []domain.Post
			if len(args) == 0 {
				posts, err = uc.List(cmd.Context())
			} else {
				dr, derr := dateRangeFromArgs(args)
				if derr != nil {
					return derr
				}
				posts, err = uc.ListBetween(cmd.Context(), dr)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range posts {
				fmt.Fprintf(out, "%s - %s (%s)\n", p.ID, p.Title, thread.PostDate(p))
			}
			return nil
		},
	}
}

func dateRangeFromArgs(args []string) (usecase.DateRange, error) {
	end := ""
	if len(args) > 1 {
		end = args[1]
	}
	return usecase.ParseDateRange(args[0], end)
}

// openOutput возвращает stdout, если путь не задан
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
