package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
	"github.com/devricklin/jina-sum-bridge/internal/metrics"
)

const (
	// MaxRetries is how many times a failed remote pipeline is re-run
	MaxRetries = 3

	remoteTimeout = 60 * time.Second
)

// SummarizeRequest represents a summary request
type SummarizeRequest struct {
	Content    string // Shared link, possibly HTML-escaped
	Identity   domain.ConversationIdentity
	SkipNotice bool         // The request was already acknowledged
	Channel    repo.Channel // Receives the progress reply
}

// SummaryUsecase runs extract -> summarize with bounded retry
type SummaryUsecase struct {
	readerRepo  repo.ReaderRepo
	chatRepo    repo.ChatRepo
	summaryRepo repo.SummaryRepo
	prompts     PromptConfig
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewSummaryUsecase creates a new summary usecase
func NewSummaryUsecase(
	readerRepo repo.ReaderRepo,
	chatRepo repo.ChatRepo,
	summaryRepo repo.SummaryRepo,
	prompts PromptConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SummaryUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryUsecase{
		readerRepo:  readerRepo,
		chatRepo:    chatRepo,
		summaryRepo: summaryRepo,
		prompts:     prompts,
		metrics:     m,
		logger:      logger.With("component", "summary"),
	}
}

// Summarize fetches and summarizes a shared link. It always returns a reply:
// the summary, or an error reply after the last attempt failed.
func (uc *SummaryUsecase) Summarize(ctx context.Context, req *SummarizeRequest) *domain.Reply {
	log := uc.logger.With("identity", req.Identity.String())
	target := html.UnescapeString(strings.TrimSpace(req.Content))

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt == 0 && !req.SkipNotice {
			log.Debug("processing url", "url", target)
			notify(ctx, log, req.Channel, domain.NewTextReply(uc.prompts.SummaryNotice))
		}
		if attempt > 0 {
			log.Info("retrying summary", "attempt", attempt, "max", MaxRetries)
		}

		summary, content, err := uc.run(ctx, target)
		if err == nil {
			uc.summaryRepo.Put(req.Identity, target, content)
			uc.metrics.Outcome("summary", "ok")
			log.Debug("content cached", "url", target, "chars", len([]rune(content)))
			return domain.NewTextReply(summary)
		}

		lastErr = err
		log.Error("summary attempt failed", "stage", domain.StageOf(err), "attempt", attempt, "url", target, "error", err)
		if ctx.Err() != nil {
			break
		}
	}

	uc.metrics.Outcome("summary", "error")
	return domain.NewErrorReply(uc.prompts.SummaryFailure + lastErr.Error())
}

// run is one attempt of the pipeline; it returns the summary and the
// truncated page content
func (uc *SummaryUsecase) run(ctx context.Context, target string) (string, string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, remoteTimeout)
	start := time.Now()
	page, err := uc.readerRepo.FetchReadable(fetchCtx, target)
	cancel()
	uc.metrics.Attempt(string(domain.StageExtract), err == nil, time.Since(start).Seconds())
	if err != nil {
		return "", "", domain.NewStageError(domain.StageExtract, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
	}

	content := uc.prompts.Truncate(page)

	chatCtx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	start = time.Now()
	summary, err := uc.chatRepo.Complete(chatCtx, uc.prompts.BuildSummaryPrompt(content))
	uc.metrics.Attempt(string(domain.StageSummarize), err == nil, time.Since(start).Seconds())
	if err != nil {
		return "", "", domain.NewStageError(domain.StageSummarize, fmt.Errorf("%w: %w", domain.ErrSummarization, err))
	}

	return summary, content, nil
}

// notify sends a progress reply; failures are logged and otherwise ignored
func notify(ctx context.Context, log *slog.Logger, ch repo.Channel, reply *domain.Reply) {
	if ch == nil {
		return
	}
	if err := ch.Send(ctx, reply); err != nil {
		log.Warn("send progress reply failed", "error", err)
	}
}
