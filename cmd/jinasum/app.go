package main

import (
	"log/slog"

	"github.com/devricklin/jina-sum-bridge/internal/biz/usecase"
	"github.com/devricklin/jina-sum-bridge/internal/conf"
	"github.com/devricklin/jina-sum-bridge/internal/data"
	"github.com/devricklin/jina-sum-bridge/internal/infra/gewechat"
	"github.com/devricklin/jina-sum-bridge/internal/metrics"
	"github.com/devricklin/jina-sum-bridge/internal/service"
)

// app holds the wired layers
type app struct {
	cfg        *conf.Config
	repos      *data.Repositories
	metrics    *metrics.Metrics
	summaryUC  *usecase.SummaryUsecase
	questionUC *usecase.QuestionUsecase
	svc        *service.JinaSumService
}

// newApp wires repositories, usecases and the service. gewe may be nil when
// nothing is sent to WeChat.
func newApp(cfg *conf.Config, gewe *gewechat.Client, logger *slog.Logger) (*app, error) {
	// Initialize repository layer
	repos, err := data.NewRepositories(gewe, data.Options{
		ReaderBase:     cfg.JinaReaderBase,
		ReaderRPM:      cfg.JinaReaderRPM,
		ReaderBurst:    cfg.JinaReaderBurst,
		ChatBase:       cfg.OpenAIAPIBase,
		ChatKey:        cfg.OpenAIAPIKey,
		ChatModel:      cfg.OpenAIModel,
		PendingTimeout: cfg.PendingTimeout(),
		ContentTimeout: cfg.ContentTimeout(),
	})
	if err != nil {
		return nil, err
	}

	strategy, err := usecase.KeyStrategyByName(cfg.CacheKeyStrategy)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	prompts := cfg.ToPromptConfig()

	// Initialize usecase layer
	identityUC := usecase.NewIdentityUsecase(repos.Directory, strategy, logger)
	summaryUC := usecase.NewSummaryUsecase(repos.Reader, repos.Chat, repos.Summary, prompts, m, logger)
	questionUC := usecase.NewQuestionUsecase(repos.Chat, repos.Summary, prompts, m, logger)

	// Initialize service layer
	svc := service.NewJinaSumService(service.Dependencies{
		IdentityUC:  identityUC,
		SummaryUC:   summaryUC,
		QuestionUC:  questionUC,
		PendingRepo: repos.Pending,
		SummaryRepo: repos.Summary,
		MessageRepo: repos.Message,
		Metrics:     m,
		Logger:      logger,
	}, service.Rules{
		Policy:         cfg.ToPolicy(),
		Filter:         cfg.ToURLFilter(),
		GroupPrefixes:  cfg.GroupChatPrefix,
		QATrigger:      cfg.QATrigger,
		Prompts:        prompts,
		PendingTimeout: cfg.PendingTimeout(),
		ContentTimeout: cfg.ContentTimeout(),
	})

	return &app{
		cfg:        cfg,
		repos:      repos,
		metrics:    m,
		summaryUC:  summaryUC,
		questionUC: questionUC,
		svc:        svc,
	}, nil
}
