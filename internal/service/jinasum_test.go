package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/usecase"
	"github.com/devricklin/jina-sum-bridge/internal/data"
)

// Mock implementations

type sentMessage struct {
	to   string
	text string
}

type mockMessageRepo struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (m *mockMessageRepo) SendText(ctx context.Context, toID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{to: toID, text: text})
	return nil
}

func (m *mockMessageRepo) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		out = append(out, s.text)
	}
	return out
}

type mockReaderRepo struct {
	mu      sync.Mutex
	text    string
	err     error
	targets []string
}

func (m *mockReaderRepo) FetchReadable(ctx context.Context, target string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, target)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockChatRepo struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

func (m *mockChatRepo) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if len(m.answers) == 0 {
		return "", errors.New("no answer configured")
	}
	answer := m.answers[0]
	if len(m.answers) > 1 {
		m.answers = m.answers[1:]
	}
	return answer, nil
}

type mockDirectoryRepo struct{}

func (mockDirectoryRepo) GetUser(ctx context.Context, userID string) (*domain.Contact, error) {
	return &domain.Contact{ID: userID, NickName: "Alice"}, nil
}

func (mockDirectoryRepo) GetGroup(ctx context.Context, groupID string) (*domain.Contact, error) {
	return &domain.Contact{ID: groupID, NickName: "Reading Club"}, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc      *JinaSumService
	messages *mockMessageRepo
	reader   *mockReaderRepo
	chat     *mockChatRepo
	clock    *fakeClock
}

func newFixture(t *testing.T, autoSum bool) *fixture {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	messages := &mockMessageRepo{}
	reader := &mockReaderRepo{text: "Title: Good page\n\nThe main point is brevity."}
	chat := &mockChatRepo{answers: []string{"📖 summary text"}}

	pendingTimeout := 60 * time.Second
	contentTimeout := 300 * time.Second
	pending := data.NewPendingRepo(pendingTimeout, clock.Now)
	summaries := data.NewSummaryRepo(contentTimeout, clock.Now)

	prompts := usecase.DefaultPromptConfig
	questionUC := usecase.NewQuestionUsecase(chat, summaries, prompts, nil, nil)
	questionUC.SetClock(clock.Now)

	svc := NewJinaSumService(Dependencies{
		IdentityUC:  usecase.NewIdentityUsecase(mockDirectoryRepo{}, usecase.DisplayNameKey{}, nil),
		SummaryUC:   usecase.NewSummaryUsecase(reader, chat, summaries, prompts, nil, nil),
		QuestionUC:  questionUC,
		PendingRepo: pending,
		SummaryRepo: summaries,
		MessageRepo: messages,
	}, Rules{
		Policy:         domain.AccessPolicy{AutoSum: autoSum},
		Filter:         domain.URLFilter{Blacklist: []string{"https://support.weixin.qq.com"}},
		GroupPrefixes:  []string{"@bot"},
		QATrigger:      "问",
		Prompts:        prompts,
		PendingTimeout: pendingTimeout,
		ContentTimeout: contentTimeout,
	})
	svc.SetClock(clock.Now)

	return &fixture{svc: svc, messages: messages, reader: reader, chat: chat, clock: clock}
}

func groupEvent(msgType domain.MsgType, content string) *domain.Event {
	return &domain.Event{
		ID:      "evt",
		Type:    msgType,
		Content: content,
		Conversation: domain.Conversation{
			RawID:    "1@chatroom",
			ChatType: domain.ChatTypeGroup,
			SenderID: "wxid_alice",
		},
	}
}

func directEvent(msgType domain.MsgType, content string) *domain.Event {
	return &domain.Event{
		ID:      "evt",
		Type:    msgType,
		Content: content,
		Conversation: domain.Conversation{
			RawID:    "wxid_alice",
			ChatType: domain.ChatTypeDirect,
			SenderID: "wxid_alice",
		},
	}
}

// Tests

func TestHandleEvent_SharingAutoSummarize(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	reply := f.svc.HandleEvent(ctx, directEvent(domain.MsgTypeSharing, "https://good.example/page"))

	require.NotNil(t, reply)
	assert.Equal(t, domain.ReplyTypeText, reply.Type)
	assert.Equal(t, []string{usecase.DefaultPromptConfig.SummaryNotice, "📖 summary text"}, f.messages.texts())
	assert.Equal(t, []string{"https://good.example/page"}, f.reader.targets)
	require.Len(t, f.chat.prompts, 1)
	assert.Contains(t, f.chat.prompts[0], "The main point is brevity.")
	assert.True(t, f.svc.summaryRepo.Has("Alice"))
	for _, m := range f.messages.sent {
		assert.Equal(t, "wxid_alice", m.to)
	}
}

func TestHandleEvent_SharingInvalidURL(t *testing.T) {
	f := newFixture(t, true)

	reply := f.svc.HandleEvent(context.Background(), groupEvent(domain.MsgTypeSharing, "https://support.weixin.qq.com/video"))

	require.NotNil(t, reply)
	assert.Equal(t, usecase.DefaultPromptConfig.InvalidURL, reply.Content)
	assert.Empty(t, f.reader.targets)
	assert.Equal(t, []string{usecase.DefaultPromptConfig.InvalidURL}, f.messages.texts())
}

func TestHandleEvent_GroupShareHeldUntilTrigger(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	reply := f.svc.HandleEvent(ctx, groupEvent(domain.MsgTypeSharing, "https://good.example/page"))
	assert.Nil(t, reply)
	assert.Empty(t, f.messages.texts())
	assert.Equal(t, 1, f.svc.pendingRepo.Len())

	f.clock.Advance(30 * time.Second)
	reply = f.svc.HandleEvent(ctx, groupEvent(domain.MsgTypeText, "@bot 总结"))

	require.NotNil(t, reply)
	assert.Equal(t, "📖 summary text", reply.Content)
	// Draining a pending share skips the progress reply
	assert.Equal(t, []string{"📖 summary text"}, f.messages.texts())
	assert.Equal(t, 0, f.svc.pendingRepo.Len())
	assert.True(t, f.svc.summaryRepo.Has("Reading Club"))
}

func TestHandleEvent_DirectShareHeldUntilTrigger(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	assert.Nil(t, f.svc.HandleEvent(ctx, directEvent(domain.MsgTypeSharing, "https://good.example/page")))
	assert.Equal(t, 1, f.svc.pendingRepo.Len())

	reply := f.svc.HandleEvent(ctx, directEvent(domain.MsgTypeText, "总结"))

	require.NotNil(t, reply)
	assert.Equal(t, []string{"https://good.example/page"}, f.reader.targets)
}

func TestHandleEvent_PendingShareExpires(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	f.svc.HandleEvent(ctx, groupEvent(domain.MsgTypeSharing, "https://good.example/page"))
	f.clock.Advance(61 * time.Second)

	reply := f.svc.HandleEvent(ctx, groupEvent(domain.MsgTypeText, "@bot 总结"))

	assert.Nil(t, reply)
	assert.Empty(t, f.reader.targets)
	assert.Empty(t, f.messages.texts())
}

func TestHandleEvent_LatestShareWins(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	f.svc.HandleEvent(ctx, groupEvent(domain.MsgTypeSharing, "https://good.example/first"))
	f.svc.HandleEvent(ctx, groupEvent(domain.MsgTypeSharing, "https://good.example/second"))
	f.svc.HandleEvent(ctx, groupEvent(domain.MsgTypeText, "@bot 总结"))

	assert.Equal(t, []string{"https://good.example/second"}, f.reader.targets)
}

func TestHandleEvent_InlineURLTrigger(t *testing.T) {
	f := newFixture(t, false)

	reply := f.svc.HandleEvent(context.Background(), groupEvent(domain.MsgTypeText, "@bot 总结 https://example.com/a"))

	require.NotNil(t, reply)
	assert.Equal(t, []string{"https://example.com/a"}, f.reader.targets)
	assert.Equal(t, []string{usecase.DefaultPromptConfig.SummaryNotice, "📖 summary text"}, f.messages.texts())
}

func TestHandleEvent_TriggerWithNothingPending(t *testing.T) {
	f := newFixture(t, true)

	reply := f.svc.HandleEvent(context.Background(), directEvent(domain.MsgTypeText, "总结"))

	assert.Nil(t, reply)
	assert.Empty(t, f.messages.texts())
	assert.Empty(t, f.reader.targets)
}

func TestHandleEvent_QuestionAfterSummary(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.chat.answers = []string{"📖 summary text", "Brevity."}

	f.svc.HandleEvent(ctx, directEvent(domain.MsgTypeSharing, "https://good.example/page"))
	f.clock.Advance(2 * time.Minute)

	reply := f.svc.HandleEvent(ctx, directEvent(domain.MsgTypeText, "问 What is the main point?"))

	require.NotNil(t, reply)
	assert.Equal(t, "Brevity.", reply.Content)
	texts := f.messages.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, usecase.DefaultPromptConfig.QuestionNotice, texts[2])
	assert.Equal(t, "Brevity.", texts[3])
	require.Len(t, f.chat.prompts, 2)
	assert.Contains(t, f.chat.prompts[1], "The main point is brevity.")
	assert.Contains(t, f.chat.prompts[1], "Answer the question: What is the main point?")
	// Questions never re-fetch
	assert.Len(t, f.reader.targets, 1)
}

func TestHandleEvent_QuestionWithoutSummaryIsIgnored(t *testing.T) {
	f := newFixture(t, true)

	reply := f.svc.HandleEvent(context.Background(), directEvent(domain.MsgTypeText, "问 what?"))

	assert.Nil(t, reply)
	assert.Empty(t, f.chat.prompts)
	assert.Empty(t, f.messages.texts())
}

func TestHandleEvent_QuestionAfterSummaryExpired(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.svc.HandleEvent(ctx, directEvent(domain.MsgTypeSharing, "https://good.example/page"))
	f.clock.Advance(301 * time.Second)

	reply := f.svc.HandleEvent(ctx, directEvent(domain.MsgTypeText, "问 What is the main point?"))

	assert.Nil(t, reply)
	assert.False(t, f.svc.summaryRepo.Has("Alice"))
}

func TestHandleEvent_ExtractionAlwaysFails(t *testing.T) {
	f := newFixture(t, true)
	f.reader.err = errors.New("reader returned status 503")

	reply := f.svc.HandleEvent(context.Background(), directEvent(domain.MsgTypeSharing, "https://good.example/page"))

	require.NotNil(t, reply)
	assert.True(t, reply.IsError())
	assert.Len(t, f.reader.targets, usecase.MaxRetries+1)
	texts := f.messages.texts()
	require.Len(t, texts, 2)
	assert.True(t, strings.HasPrefix(texts[1], "[ERROR]\n"+usecase.DefaultPromptConfig.SummaryFailure))
	assert.False(t, f.svc.summaryRepo.Has("Alice"))
}

func TestHandleEvent_IgnoresOtherTypes(t *testing.T) {
	f := newFixture(t, true)

	reply := f.svc.HandleEvent(context.Background(), directEvent(domain.MsgTypeOther, "<img/>"))

	assert.Nil(t, reply)
	assert.Empty(t, f.messages.texts())
}

func TestHandleEvent_PlainChatIgnored(t *testing.T) {
	f := newFixture(t, true)

	reply := f.svc.HandleEvent(context.Background(), groupEvent(domain.MsgTypeText, "@bot hello"))

	assert.Nil(t, reply)
	assert.Empty(t, f.messages.texts())
}

func TestRun_ProcessesQueuedEvents(t *testing.T) {
	f := newFixture(t, true)
	f.chat.answers = []string{"first", "second"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.True(t, f.svc.Enqueue(directEvent(domain.MsgTypeSharing, "https://good.example/a")))
	require.True(t, f.svc.Enqueue(directEvent(domain.MsgTypeSharing, "https://good.example/b")))

	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(f.messages.texts()) == 4
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	texts := f.messages.texts()
	assert.Equal(t, []string{
		usecase.DefaultPromptConfig.SummaryNotice, "first",
		usecase.DefaultPromptConfig.SummaryNotice, "second",
	}, texts)
}

func TestHelpText(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, "网页内容总结插件\n", f.svc.HelpText(false))

	help := f.svc.HelpText(true)
	assert.Contains(t, help, "需要发送「总结」才能触发总结")
	assert.Contains(t, help, "5分钟内")
	assert.Contains(t, help, "「问xxx」")
	assert.Contains(t, help, "60秒内")
}
