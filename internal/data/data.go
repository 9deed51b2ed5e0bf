package data

import (
	"time"

	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
	"github.com/devricklin/jina-sum-bridge/internal/infra/gewechat"
)

// Repositories contains all repositories
type Repositories struct {
	Reader    repo.ReaderRepo
	Chat      repo.ChatRepo
	Directory repo.DirectoryRepo
	Message   repo.MessageRepo
	Pending   repo.PendingRepo
	Summary   repo.SummaryRepo
}

// Options configures the repositories
type Options struct {
	ReaderBase     string
	ReaderRPM      int // Reader requests per minute, 0 means unlimited
	ReaderBurst    int
	ChatBase       string
	ChatKey        string
	ChatModel      string
	PendingTimeout time.Duration
	ContentTimeout time.Duration
}

// NewRepositories creates all repositories. gewe may be nil for offline
// use, which leaves Directory and Message unset.
func NewRepositories(gewe *gewechat.Client, opts Options) (*Repositories, error) {
	chatRepo, err := NewOpenAIRepo(opts.ChatBase, opts.ChatKey, opts.ChatModel)
	if err != nil {
		return nil, err
	}

	repos := &Repositories{
		Reader:  NewRateLimitedReaderRepo(NewJinaReaderRepo(opts.ReaderBase, nil), opts.ReaderRPM, opts.ReaderBurst),
		Chat:    chatRepo,
		Pending: NewPendingRepo(opts.PendingTimeout, time.Now),
		Summary: NewSummaryRepo(opts.ContentTimeout, time.Now),
	}
	if gewe != nil {
		geweRepo := NewGewechatRepo(gewe)
		repos.Directory = geweRepo
		repos.Message = geweRepo
	}
	return repos, nil
}
