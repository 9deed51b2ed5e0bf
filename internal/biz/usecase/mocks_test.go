package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
)

type mockReaderRepo struct {
	mu       sync.Mutex
	text     string
	failures int // Number of leading calls that fail
	calls    []string
}

func (m *mockReaderRepo) FetchReadable(ctx context.Context, target string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, target)
	if len(m.calls) <= m.failures {
		return "", errors.New("reader returned status 502")
	}
	return m.text, nil
}

type mockChatRepo struct {
	mu       sync.Mutex
	answer   string
	failures int
	prompts  []string
}

func (m *mockChatRepo) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if len(m.prompts) <= m.failures {
		return "", errors.New("chat completion: 500 overloaded")
	}
	return m.answer, nil
}

type mockSummaryRepo struct {
	entries map[domain.ConversationIdentity]*domain.SummaryEntry
	timeout time.Duration
	now     time.Time
}

func newMockSummaryRepo() *mockSummaryRepo {
	return &mockSummaryRepo{
		entries: make(map[domain.ConversationIdentity]*domain.SummaryEntry),
		timeout: 5 * time.Minute,
		now:     time.Now(),
	}
}

func (m *mockSummaryRepo) Put(id domain.ConversationIdentity, sourceURL, content string) {
	m.entries[id] = &domain.SummaryEntry{Identity: id, SourceURL: sourceURL, Content: content, CreatedAt: m.now}
}

func (m *mockSummaryRepo) GetIfFresh(id domain.ConversationIdentity, now time.Time) (*domain.SummaryEntry, bool) {
	e, ok := m.entries[id]
	if !ok || !e.IsFresh(now, m.timeout) {
		return nil, false
	}
	return e, true
}

func (m *mockSummaryRepo) Has(id domain.ConversationIdentity) bool {
	_, ok := m.entries[id]
	return ok
}

func (m *mockSummaryRepo) Purge(now time.Time) int { return 0 }

func (m *mockSummaryRepo) Len() int { return len(m.entries) }

type mockChannel struct {
	mu      sync.Mutex
	replies []*domain.Reply
}

func (m *mockChannel) Send(ctx context.Context, reply *domain.Reply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
	return nil
}

type mockDirectoryRepo struct {
	users  map[string]string
	groups map[string]string
	err    error
	calls  int
}

func (m *mockDirectoryRepo) GetUser(ctx context.Context, userID string) (*domain.Contact, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Contact{ID: userID, NickName: m.users[userID]}, nil
}

func (m *mockDirectoryRepo) GetGroup(ctx context.Context, groupID string) (*domain.Contact, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Contact{ID: groupID, NickName: m.groups[groupID]}, nil
}
