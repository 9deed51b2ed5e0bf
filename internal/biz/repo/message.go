package repo

import (
	"context"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
)

// MessageRepo sends messages to the messaging platform
type MessageRepo interface {
	// SendText sends a text message to a user or chatroom
	SendText(ctx context.Context, toID, text string) error
}

// Channel delivers replies to the conversation an event came from
type Channel interface {
	Send(ctx context.Context, reply *domain.Reply) error
}
