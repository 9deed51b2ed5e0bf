package repo

import "context"

// ChatRepo is the chat-completion interface
type ChatRepo interface {
	// Complete sends a single user message and returns the first choice's content
	Complete(ctx context.Context, prompt string) (string, error)
}
