package repo

import (
	"time"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
)

// PendingRepo holds at most one not-yet-summarized share per conversation
type PendingRepo interface {
	// Put stores content, replacing any pending share of the same conversation
	Put(id domain.ConversationIdentity, content string)

	// Take returns and removes the pending share
	Take(id domain.ConversationIdentity) (string, bool)

	// Purge removes shares older than the pending timeout, returns how many
	Purge(now time.Time) int

	Len() int
}

// SummaryRepo holds the content behind the latest summary per conversation
type SummaryRepo interface {
	// Put stores the extracted content, replacing the previous entry
	Put(id domain.ConversationIdentity, sourceURL, content string)

	// GetIfFresh returns the entry if it is within the content timeout.
	// Stale entries are reported absent but left for Purge.
	GetIfFresh(id domain.ConversationIdentity, now time.Time) (*domain.SummaryEntry, bool)

	// Has reports whether any entry, fresh or not, exists
	Has(id domain.ConversationIdentity) bool

	// Purge removes entries older than the content timeout, returns how many
	Purge(now time.Time) int

	Len() int
}
