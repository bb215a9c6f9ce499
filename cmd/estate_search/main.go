package main

import (
	"io"
	"log/slog"
	"os"

	"estate_search/internal/config"
	"estate_search/internal/lib/logger/handlers/slogpretty"

	"github.com/spf13/cobra"
)

var (
	// Version задаётся при сборке
	Version = "dev"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, args[1:], os.Stdout); err != nil {
		exit(1)
	}
}

// Execute собирает дерево команд и выполняет его; вынесено для тестов.
func Execute(version string, args []string, out io.Writer) error {
	rootCmd := &cobra.Command{
		Use:           "estate_search",
		Short:         "Property search and matching engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetOut(out)
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(
		newServeCmd(),
		newSearchCmd(),
		newSimilarCmd(),
		newExportCmd(),
	)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = setupPrettySlog(w)
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog(w io.Writer) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(w)

	return slog.New(handler)
}
