package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/infra/gewechat"
	"github.com/devricklin/jina-sum-bridge/internal/metrics"
)

const (
	seenTTL         = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// EventSink receives events accepted by the callback endpoint
type EventSink interface {
	Enqueue(ev *domain.Event) bool
}

// Options configures the callback server
type Options struct {
	Addr         string
	CallbackPath string
}

// GewechatServer receives gewechat callbacks over HTTP
type GewechatServer struct {
	echo    *echo.Echo
	addr    string
	sink    EventSink
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	// Message deduplication cache
	seenMsgsMu sync.Mutex
	seenMsgs   map[string]time.Time // msgID -> timestamp
}

// NewGewechatServer creates a new callback server
func NewGewechatServer(opts Options, sink EventSink, m *metrics.Metrics, logger *slog.Logger) *GewechatServer {
	if logger == nil {
		logger = slog.Default()
	}

	s := &GewechatServer{
		echo:     echo.New(),
		addr:     opts.Addr,
		sink:     sink,
		metrics:  m,
		logger:   logger.With("component", "server"),
		now:      time.Now,
		seenMsgs: make(map[string]time.Time),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())

	s.echo.POST(opts.CallbackPath, s.handleCallback)
	s.echo.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if m != nil {
		s.echo.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return s
}

// Handler exposes the router
func (s *GewechatServer) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is done, then shuts down gracefully
func (s *GewechatServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// handleCallback accepts one callback. gewechat only needs a fast 200; the
// message is processed later by the event loop.
func (s *GewechatServer) handleCallback(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "read body")
	}

	msg, err := gewechat.ParseCallback(body)
	if err != nil {
		s.logger.Warn("bad callback", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid callback")
	}
	if msg == nil {
		return ack(c)
	}

	if msg.IsFromSelf() {
		return ack(c)
	}

	// Message deduplication: gewechat retries slow callbacks
	if msg.MsgID != "0" {
		if s.isMessageSeen(msg.MsgID) {
			s.logger.Debug("duplicate message ignored", "msg_id", msg.MsgID)
			return ack(c)
		}
		s.markMessageSeen(msg.MsgID)
	}

	ev := toEvent(msg)
	s.logger.Debug("received message",
		"event_id", ev.ID, "type", ev.Type, "from", msg.FromID, "content", truncate(ev.Content, 50))

	if !s.sink.Enqueue(ev) {
		s.metrics.Event(string(ev.Type), "dropped")
	}
	return ack(c)
}

func ack(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"ret": 200, "msg": "ok"})
}

// toEvent converts a gewechat message to a domain event
func toEvent(msg *gewechat.Message) *domain.Event {
	id := msg.MsgID
	if id == "0" {
		id = uuid.NewString()
	}

	msgType := domain.MsgTypeOther
	switch msg.Kind {
	case gewechat.KindText:
		msgType = domain.MsgTypeText
	case gewechat.KindSharing:
		msgType = domain.MsgTypeSharing
	}

	chatType := domain.ChatTypeDirect
	if msg.IsGroup {
		chatType = domain.ChatTypeGroup
	}

	var created time.Time
	if msg.CreateTime > 0 {
		created = time.Unix(msg.CreateTime, 0)
	}

	return &domain.Event{
		ID:      id,
		Type:    msgType,
		Content: msg.Content,
		Conversation: domain.Conversation{
			RawID:    msg.FromID,
			ChatType: chatType,
			SenderID: msg.SenderID,
		},
		CreateTime: created,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// isMessageSeen checks if a message has been processed
func (s *GewechatServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()
	_, exists := s.seenMsgs[msgID]
	return exists
}

// markMessageSeen marks a message as processed and drops old records
func (s *GewechatServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()

	now := s.now()
	s.seenMsgs[msgID] = now

	cutoff := now.Add(-seenTTL)
	for id, ts := range s.seenMsgs {
		if ts.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
}
