package repo

import (
	"context"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
)

// DirectoryRepo resolves platform IDs to contacts
type DirectoryRepo interface {
	// GetUser gets a user's brief info by wxid
	GetUser(ctx context.Context, userID string) (*domain.Contact, error)

	// GetGroup gets a chatroom's info by chatroom ID
	GetGroup(ctx context.Context, groupID string) (*domain.Contact, error)
}
