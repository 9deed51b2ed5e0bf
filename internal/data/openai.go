package data

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
)

// ChatTimeout bounds one chat-completion request
const ChatTimeout = 60 * time.Second

// hostTransport pins the Host header to the API base's host
type hostTransport struct {
	host string
	base http.RoundTripper
}

func (t *hostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.host != "" {
		req = req.Clone(req.Context())
		req.Host = t.host
	}
	return t.base.RoundTrip(req)
}

// openAIRepo implements the chat repository with go-openai
type openAIRepo struct {
	client *openai.Client
	model  string
}

// NewOpenAIRepo creates a chat repository against an OpenAI-compatible API.
// baseURL is the API root, e.g. https://api.openai.com/v1; requests go to
// baseURL/chat/completions.
func NewOpenAIRepo(baseURL, apiKey, model string) (repo.ChatRepo, error) {
	return newOpenAIRepo(baseURL, apiKey, model, http.DefaultTransport)
}

func newOpenAIRepo(baseURL, apiKey, model string, transport http.RoundTripper) (repo.ChatRepo, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, errors.Errorf("invalid open_ai_api_base %q", baseURL)
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	config.HTTPClient = &http.Client{
		Timeout:   ChatTimeout,
		Transport: &hostTransport{host: parsed.Host, base: transport},
	}

	return &openAIRepo{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Complete sends prompt as the only user message
func (r *openAIRepo) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}
