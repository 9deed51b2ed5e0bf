package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/usecase"
	"github.com/devricklin/jina-sum-bridge/internal/conf"
)

// cliIdentity keys the caches for one-shot commands
const cliIdentity domain.ConversationIdentity = "cli"

// writerChannel prints progress replies
type writerChannel struct {
	w io.Writer
}

func (c writerChannel) Send(_ context.Context, reply *domain.Reply) error {
	_, err := fmt.Fprintln(c.w, reply.Render())
	return err
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize one link and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(cmd)
			if err != nil {
				return err
			}
			reply, err := summarizeURL(cmd, a.cfg, a.summaryUC, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Render())
			if reply.IsError() {
				return fmt.Errorf("summary failed")
			}
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <url> <question>",
		Short: "Summarize one link, then answer a question about it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := offlineApp(cmd)
			if err != nil {
				return err
			}
			reply, err := summarizeURL(cmd, a.cfg, a.summaryUC, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Render())
			if reply.IsError() {
				return fmt.Errorf("summary failed")
			}

			answer := a.questionUC.Answer(cmd.Context(), &usecase.QuestionRequest{
				Question: args[1],
				Identity: cliIdentity,
				Channel:  writerChannel{w: cmd.ErrOrStderr()},
			})
			fmt.Fprintln(cmd.OutOrStdout(), answer.Render())
			if answer.IsError() {
				return fmt.Errorf("question failed")
			}
			return nil
		},
	}
}

func offlineApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, &conf.ConfigError{Field: "open_ai_api_key", Message: "required"}
	}
	return newApp(cfg, nil, newLogger(cmd, cfg))
}

// summarizeURL runs the summary flow for one link, printing progress to stderr
func summarizeURL(cmd *cobra.Command, cfg *conf.Config, uc *usecase.SummaryUsecase, target string) (*domain.Reply, error) {
	filter := cfg.ToURLFilter()
	if !filter.IsAllowed(target) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidURL, target)
	}
	return uc.Summarize(cmd.Context(), &usecase.SummarizeRequest{
		Content:  target,
		Identity: cliIdentity,
		Channel:  writerChannel{w: cmd.ErrOrStderr()},
	}), nil
}
