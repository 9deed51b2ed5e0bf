package data

import (
	"sync"
	"time"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
)

// Clock returns the current time
type Clock func() time.Time

// pendingRepo implements the in-memory pending share cache
type pendingRepo struct {
	mu      sync.Mutex
	entries map[domain.ConversationIdentity]*domain.PendingShare
	timeout time.Duration
	now     Clock
}

// NewPendingRepo creates a pending share cache
func NewPendingRepo(timeout time.Duration, now Clock) repo.PendingRepo {
	if now == nil {
		now = time.Now
	}
	return &pendingRepo{
		entries: make(map[domain.ConversationIdentity]*domain.PendingShare),
		timeout: timeout,
		now:     now,
	}
}

// Put stores a share, overwriting the previous one
func (r *pendingRepo) Put(id domain.ConversationIdentity, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &domain.PendingShare{
		Identity:  id,
		Content:   content,
		CreatedAt: r.now(),
	}
}

// Take reads and removes a share
func (r *pendingRepo) Take(id domain.ConversationIdentity) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	share, ok := r.entries[id]
	if !ok {
		return "", false
	}
	delete(r.entries, id)
	if share.IsExpired(r.now(), r.timeout) {
		return "", false
	}
	return share.Content, true
}

// Purge removes expired shares
func (r *pendingRepo) Purge(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, share := range r.entries {
		if share.IsExpired(now, r.timeout) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of pending shares
func (r *pendingRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// summaryRepo implements the in-memory summary content cache
type summaryRepo struct {
	mu      sync.RWMutex
	entries map[domain.ConversationIdentity]*domain.SummaryEntry
	timeout time.Duration
	now     Clock
}

// NewSummaryRepo creates a summary content cache
func NewSummaryRepo(timeout time.Duration, now Clock) repo.SummaryRepo {
	if now == nil {
		now = time.Now
	}
	return &summaryRepo{
		entries: make(map[domain.ConversationIdentity]*domain.SummaryEntry),
		timeout: timeout,
		now:     now,
	}
}

// Put stores extracted content, overwriting the previous entry
func (r *summaryRepo) Put(id domain.ConversationIdentity, sourceURL, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &domain.SummaryEntry{
		Identity:  id,
		SourceURL: sourceURL,
		Content:   content,
		CreatedAt: r.now(),
	}
}

// GetIfFresh returns a copy of the entry while it is fresh
func (r *summaryRepo) GetIfFresh(id domain.ConversationIdentity, now time.Time) (*domain.SummaryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || !entry.IsFresh(now, r.timeout) {
		return nil, false
	}
	cp := *entry
	return &cp, true
}

// Has reports whether an entry exists regardless of age
func (r *summaryRepo) Has(id domain.ConversationIdentity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Purge removes stale entries
func (r *summaryRepo) Purge(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.entries {
		if !entry.IsFresh(now, r.timeout) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached summaries
func (r *summaryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
