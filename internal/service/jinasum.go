package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
	"github.com/devricklin/jina-sum-bridge/internal/biz/usecase"
	"github.com/devricklin/jina-sum-bridge/internal/metrics"
)

const defaultQueueSize = 64

// Dependencies groups what JinaSumService needs
type Dependencies struct {
	IdentityUC  *usecase.IdentityUsecase
	SummaryUC   *usecase.SummaryUsecase
	QuestionUC  *usecase.QuestionUsecase
	PendingRepo repo.PendingRepo
	SummaryRepo repo.SummaryRepo
	MessageRepo repo.MessageRepo
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Rules groups the routing configuration
type Rules struct {
	Policy         domain.AccessPolicy
	Filter         domain.URLFilter
	GroupPrefixes  []string
	QATrigger      string
	Prompts        usecase.PromptConfig
	PendingTimeout time.Duration
	ContentTimeout time.Duration
}

// JinaSumService routes inbound events to the summary and question flows
type JinaSumService struct {
	identityUC  *usecase.IdentityUsecase
	summaryUC   *usecase.SummaryUsecase
	questionUC  *usecase.QuestionUsecase
	pendingRepo repo.PendingRepo
	summaryRepo repo.SummaryRepo
	messageRepo repo.MessageRepo

	rules  Rules
	parser *domain.TriggerParser
	now    func() time.Time

	metrics *metrics.Metrics
	logger  *slog.Logger

	events chan *domain.Event
}

// NewJinaSumService creates a new service
func NewJinaSumService(deps Dependencies, rules Rules) *JinaSumService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if rules.QATrigger == "" {
		rules.QATrigger = domain.DefaultQATrigger
	}

	s := &JinaSumService{
		identityUC:  deps.IdentityUC,
		summaryUC:   deps.SummaryUC,
		questionUC:  deps.QuestionUC,
		pendingRepo: deps.PendingRepo,
		summaryRepo: deps.SummaryRepo,
		messageRepo: deps.MessageRepo,
		rules:       rules,
		now:         time.Now,
		metrics:     deps.Metrics,
		logger:      logger.With("component", "jinasum"),
		events:      make(chan *domain.Event, defaultQueueSize),
	}
	s.parser = &domain.TriggerParser{
		GroupPrefixes: rules.GroupPrefixes,
		QATrigger:     rules.QATrigger,
		Filter:        &s.rules.Filter,
	}
	return s
}

// SetClock replaces the clock used for cache purging
func (s *JinaSumService) SetClock(now func() time.Time) {
	s.now = now
}

// Enqueue queues an event for the event loop. It returns false when the
// queue is full and the event was dropped.
func (s *JinaSumService) Enqueue(ev *domain.Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		s.logger.Warn("event queue full, dropping event", "event_id", ev.ID)
		return false
	}
}

// Run handles queued events one at a time until ctx is done
func (s *JinaSumService) Run(ctx context.Context) error {
	s.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("event loop stopped")
			return nil
		case ev := <-s.events:
			s.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent processes one event to completion and delivers the final reply.
// It returns that reply, or nil when the event needed no answer.
func (s *JinaSumService) HandleEvent(ctx context.Context, ev *domain.Event) *domain.Reply {
	if !ev.IsHandled() {
		s.metrics.Event(string(ev.Type), "ignored")
		return nil
	}

	conv := ev.Conversation
	id := s.identityUC.Resolve(ctx, conv)
	auto := s.rules.Policy.ShouldAutoSummarize(domain.ConversationIdentity(id.DisplayName), conv.IsGroup())

	s.purge()

	log := s.logger.With("event_id", ev.ID, "identity", id.Key.String(), "group", conv.IsGroup())
	ch := s.channel(conv.RawID)

	var reply *domain.Reply
	switch ev.Type {
	case domain.MsgTypeSharing:
		reply = s.handleSharing(ctx, log, ev, id.Key, auto, ch)
	case domain.MsgTypeText:
		reply = s.handleText(ctx, log, ev, id.Key, ch)
	}

	if reply != nil {
		if err := ch.Send(ctx, reply); err != nil {
			log.Error("send reply failed", "error", err)
		}
	}
	s.metrics.CacheSize("pending", s.pendingRepo.Len())
	s.metrics.CacheSize("summary", s.summaryRepo.Len())
	return reply
}

func (s *JinaSumService) handleSharing(
	ctx context.Context,
	log *slog.Logger,
	ev *domain.Event,
	id domain.ConversationIdentity,
	auto bool,
	ch repo.Channel,
) *domain.Reply {
	log.Debug("processing sharing message")

	if !s.rules.Filter.IsAllowed(ev.Content) {
		log.Info("rejected url", "url", ev.Content, "error", domain.ErrInvalidURL)
		s.metrics.Event(string(ev.Type), "invalid_url")
		return domain.NewTextReply(s.rules.Prompts.InvalidURL)
	}

	if !auto {
		s.pendingRepo.Put(id, ev.Content)
		log.Debug("cached sharing message", "url", ev.Content)
		s.metrics.Event(string(ev.Type), "pending")
		return nil
	}

	s.metrics.Event(string(ev.Type), "summarize")
	return s.summaryUC.Summarize(ctx, &usecase.SummarizeRequest{
		Content:  ev.Content,
		Identity: id,
		Channel:  ch,
	})
}

func (s *JinaSumService) handleText(
	ctx context.Context,
	log *slog.Logger,
	ev *domain.Event,
	id domain.ConversationIdentity,
	ch repo.Channel,
) *domain.Reply {
	trigger := s.parser.Parse(ev.Content, ev.Conversation.IsGroup())

	switch trigger.Kind {
	case domain.TriggerSummarize:
		if trigger.URL != "" {
			log.Debug("processing direct url", "url", trigger.URL)
			s.metrics.Event(string(ev.Type), "summarize")
			return s.summaryUC.Summarize(ctx, &usecase.SummarizeRequest{
				Content:  trigger.URL,
				Identity: id,
				Channel:  ch,
			})
		}
		if content, ok := s.pendingRepo.Take(id); ok {
			log.Debug("processing cached content", "url", content)
			s.metrics.Event(string(ev.Type), "summarize_pending")
			return s.summaryUC.Summarize(ctx, &usecase.SummarizeRequest{
				Content:    content,
				Identity:   id,
				SkipNotice: true,
				Channel:    ch,
			})
		}
		log.Debug("no content to summarize", "error", domain.ErrNothingPending)
		s.metrics.Event(string(ev.Type), "nothing_pending")
		return nil

	case domain.TriggerQuestion:
		if !s.summaryRepo.Has(id) {
			s.metrics.Event(string(ev.Type), "ignored")
			return nil
		}
		log.Debug("processing question", "question", trigger.Question)
		s.metrics.Event(string(ev.Type), "question")
		return s.questionUC.Answer(ctx, &usecase.QuestionRequest{
			Question: trigger.Question,
			Identity: id,
			Channel:  ch,
		})
	}

	s.metrics.Event(string(ev.Type), "ignored")
	return nil
}

// purge drops expired entries from both caches
func (s *JinaSumService) purge() {
	now := s.now()
	if n := s.pendingRepo.Purge(now); n > 0 {
		s.logger.Debug("purged pending shares", "count", n)
	}
	if n := s.summaryRepo.Purge(now); n > 0 {
		s.logger.Debug("purged summaries", "count", n)
	}
}

func (s *JinaSumService) channel(toID string) repo.Channel {
	return &chatChannel{messageRepo: s.messageRepo, toID: toID}
}

// chatChannel sends replies to one conversation
type chatChannel struct {
	messageRepo repo.MessageRepo
	toID        string
}

// Send implements repo.Channel
func (c *chatChannel) Send(ctx context.Context, reply *domain.Reply) error {
	if c.messageRepo == nil {
		return nil
	}
	return c.messageRepo.SendText(ctx, c.toID, reply.Render())
}
