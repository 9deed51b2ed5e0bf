package data

import (
	"context"

	"github.com/pkg/errors"

	"github.com/devricklin/jina-sum-bridge/internal/biz/domain"
	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
	"github.com/devricklin/jina-sum-bridge/internal/infra/gewechat"
)

// GewechatRepo implements the directory and message repositories
type GewechatRepo struct {
	client *gewechat.Client
}

// NewGewechatRepo creates a gewechat-backed repository
func NewGewechatRepo(client *gewechat.Client) *GewechatRepo {
	return &GewechatRepo{client: client}
}

var (
	_ repo.DirectoryRepo = (*GewechatRepo)(nil)
	_ repo.MessageRepo   = (*GewechatRepo)(nil)
)

// GetUser gets a user's nickname
func (r *GewechatRepo) GetUser(ctx context.Context, userID string) (*domain.Contact, error) {
	infos, err := r.client.GetBriefInfo(ctx, []string{userID})
	if err != nil {
		return nil, errors.Wrapf(err, "get brief info for %s", userID)
	}
	if len(infos) == 0 {
		return nil, errors.Errorf("no brief info for %s", userID)
	}
	return &domain.Contact{ID: userID, NickName: infos[0].NickName}, nil
}

// GetGroup gets a group's name
func (r *GewechatRepo) GetGroup(ctx context.Context, groupID string) (*domain.Contact, error) {
	info, err := r.client.GetChatroomInfo(ctx, groupID)
	if err != nil {
		return nil, errors.Wrapf(err, "get chatroom info for %s", groupID)
	}
	return &domain.Contact{ID: groupID, NickName: info.NickName}, nil
}

// SendText sends a text message
func (r *GewechatRepo) SendText(ctx context.Context, toID, text string) error {
	return r.client.PostText(ctx, toID, text, "")
}
