package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
	"github.com/devricklin/jina-sum-bridge/internal/metrics"
)

// QuestionRequest represents a follow-up question
type QuestionRequest struct {
	Question string
	Identity domain.ConversationIdentity
	Channel  repo.Channel
}

// QuestionUsecase answers questions about the latest summarized page
type QuestionUsecase struct {
	chatRepo    repo.ChatRepo
	summaryRepo repo.SummaryRepo
	prompts     PromptConfig
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewQuestionUsecase creates a new question usecase
func NewQuestionUsecase(
	chatRepo repo.ChatRepo,
	summaryRepo repo.SummaryRepo,
	prompts PromptConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *QuestionUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionUsecase{
		chatRepo:    chatRepo,
		summaryRepo: summaryRepo,
		prompts:     prompts,
		now:         time.Now,
		metrics:     m,
		logger:      logger.With("component", "question"),
	}
}

// SetClock replaces the clock used for freshness checks
func (uc *QuestionUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// Answer answers req against the cached page content
func (uc *QuestionUsecase) Answer(ctx context.Context, req *QuestionRequest) *domain.Reply {
	log := uc.logger.With("identity", req.Identity.String())

	entry, ok := uc.summaryRepo.GetIfFresh(req.Identity, uc.now())
	if !ok {
		log.Debug("no valid content cache", "error", domain.ErrStaleCache)
		uc.metrics.Outcome("question", "expired")
		return domain.NewTextReply(uc.prompts.ExpiredNotice)
	}

	prompt := uc.prompts.BuildQuestionPrompt(entry.Content, req.Question)

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt == 0 {
			notify(ctx, log, req.Channel, domain.NewTextReply(uc.prompts.QuestionNotice))
		}

		answer, err := uc.ask(ctx, prompt)
		if err == nil {
			uc.metrics.Outcome("question", "ok")
			return domain.NewTextReply(answer)
		}

		lastErr = err
		log.Error("question attempt failed", "stage", domain.StageQuestion, "attempt", attempt, "error", err)
		if ctx.Err() != nil {
			break
		}
	}

	uc.metrics.Outcome("question", "error")
	return domain.NewErrorReply(uc.prompts.QuestionFailure + lastErr.Error())
}

func (uc *QuestionUsecase) ask(ctx context.Context, prompt string) (string, error) {
	chatCtx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	start := time.Now()
	answer, err := uc.chatRepo.Complete(chatCtx, prompt)
	uc.metrics.Attempt(string(domain.StageQuestion), err == nil, time.Since(start).Seconds())
	if err != nil {
		return "", domain.NewStageError(domain.StageQuestion, fmt.Errorf("%w: %w", domain.ErrQuestion, err))
	}
	return answer, nil
}
