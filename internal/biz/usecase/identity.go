package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
)

// KeyStrategy decides which identity keys the per-conversation caches
type KeyStrategy interface {
	Key(conv domain.Conversation, displayName string) domain.ConversationIdentity
}

// DisplayNameKey keys caches by display name. Two conversations with the
// same name share cache entries.
type DisplayNameKey struct{}

// Key implements KeyStrategy
func (DisplayNameKey) Key(_ domain.Conversation, displayName string) domain.ConversationIdentity {
	return domain.ConversationIdentity(displayName)
}

// RawIDKey keys caches by platform ID
type RawIDKey struct{}

// Key implements KeyStrategy
func (RawIDKey) Key(conv domain.Conversation, _ string) domain.ConversationIdentity {
	return domain.ConversationIdentity(conv.RawID)
}

// KeyStrategyByName maps a config value to a strategy
func KeyStrategyByName(name string) (KeyStrategy, error) {
	switch name {
	case "", "display":
		return DisplayNameKey{}, nil
	case "raw":
		return RawIDKey{}, nil
	default:
		return nil, fmt.Errorf("unknown cache key strategy %q", name)
	}
}

// Identity is the resolved identity of a conversation
type Identity struct {
	DisplayName string                      // Used for access policy lists
	Key         domain.ConversationIdentity // Used for caches
}

// IdentityUsecase resolves conversations to display names, memoizing
// successful lookups for the process lifetime
type IdentityUsecase struct {
	directory repo.DirectoryRepo
	strategy  KeyStrategy
	logger    *slog.Logger

	mu     sync.Mutex
	users  map[string]string
	groups map[string]string
}

// NewIdentityUsecase creates a new identity usecase. directory may be nil,
// in which case raw IDs are used as names.
func NewIdentityUsecase(directory repo.DirectoryRepo, strategy KeyStrategy, logger *slog.Logger) *IdentityUsecase {
	if strategy == nil {
		strategy = DisplayNameKey{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityUsecase{
		directory: directory,
		strategy:  strategy,
		logger:    logger.With("component", "identity"),
		users:     make(map[string]string),
		groups:    make(map[string]string),
	}
}

// Resolve gets the identity of conv
func (uc *IdentityUsecase) Resolve(ctx context.Context, conv domain.Conversation) Identity {
	name := uc.DisplayName(ctx, conv)
	return Identity{
		DisplayName: name,
		Key:         uc.strategy.Key(conv, name),
	}
}

// DisplayName gets the group name or nickname, falling back to the raw ID
func (uc *IdentityUsecase) DisplayName(ctx context.Context, conv domain.Conversation) string {
	cache := uc.users
	if conv.IsGroup() {
		cache = uc.groups
	}

	uc.mu.Lock()
	name, ok := cache[conv.RawID]
	uc.mu.Unlock()
	if ok {
		return name
	}

	if uc.directory == nil {
		return conv.RawID
	}

	var contact *domain.Contact
	var err error
	if conv.IsGroup() {
		contact, err = uc.directory.GetGroup(ctx, conv.RawID)
	} else {
		contact, err = uc.directory.GetUser(ctx, conv.RawID)
	}
	if err != nil {
		uc.logger.Error("resolve name failed", "raw_id", conv.RawID, "group", conv.IsGroup(), "error", err)
		return conv.RawID
	}
	if contact.NickName == "" {
		uc.logger.Warn("directory returned empty name", "raw_id", conv.RawID)
		return conv.RawID
	}

	uc.mu.Lock()
	cache[conv.RawID] = contact.NickName
	uc.mu.Unlock()
	return contact.NickName
}
