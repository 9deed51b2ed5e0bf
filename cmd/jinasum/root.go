package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devricklin/jina-sum-bridge/internal/conf"
)

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jinasum",
		Short: "Summarize links shared in WeChat conversations",
		Long: `jinasum watches WeChat conversations through a gewechat gateway,
summarizes shared links with the Jina reader and an OpenAI-compatible model,
and answers follow-up questions about the latest summary.

Examples:
  jinasum serve --config config.json
  jinasum summarize https://go.dev/blog/
  jinasum ask https://go.dev/blog/ "What changed?"
  jinasum usage -v`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSummarizeCmd(),
		newAskCmd(),
		newUsageCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the config file (json or yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logs")

	return rootCmd
}

// loadConfig loads the config named by --config
func loadConfig(cmd *cobra.Command) (*conf.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	return conf.Load(path)
}

// newLogger builds the process logger from config and --verbose, and makes
// it the slog default
func newLogger(cmd *cobra.Command, cfg *conf.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
	}
	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
