package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const errExitCode = 1

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(errExitCode)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "threaddigest",
		Short:         "collect Reddit threads, export them as text and analyze them with LLMs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newServeCmd(logger),
		newFetchCmd(logger),
		newExportCmd(logger),
		newAnalyzeCmd(logger),
		newSuggestCmd(logger),
		newListCmd(logger),
	)
	return cmd
}
