package domain

import "time"

// PendingShare is a shared link waiting for an explicit "总结" in the same conversation
type PendingShare struct {
	Identity  ConversationIdentity
	Content   string
	CreatedAt time.Time
}

// IsExpired checks whether the share outlived the pending timeout
func (p *PendingShare) IsExpired(now time.Time, timeout time.Duration) bool {
	return now.Sub(p.CreatedAt) > timeout
}

// SummaryEntry is the extracted page behind the latest summary of a conversation,
// kept for follow-up questions
type SummaryEntry struct {
	Identity  ConversationIdentity
	SourceURL string
	Content   string
	CreatedAt time.Time
}

// IsFresh checks whether the entry can still answer questions
func (s *SummaryEntry) IsFresh(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.CreatedAt) <= timeout
}
