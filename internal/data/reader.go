package data

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
)

const (
	// ReaderTimeout bounds one extraction request
	ReaderTimeout = 60 * time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
)

// jinaReaderRepo implements the reader repository over the Jina reader proxy
type jinaReaderRepo struct {
	baseURL string
	client  *http.Client
}

// NewJinaReaderRepo creates a reader repository rooted at baseURL
func NewJinaReaderRepo(baseURL string, client *http.Client) repo.ReaderRepo {
	if client == nil {
		client = &http.Client{Timeout: ReaderTimeout}
	}
	return &jinaReaderRepo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// ReaderURL builds the proxy URL for target
func (r *jinaReaderRepo) ReaderURL(target string) string {
	return r.baseURL + "/" + target
}

// FetchReadable gets the readable text of target
func (r *jinaReaderRepo) FetchReadable(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ReaderURL(target), nil)
	if err != nil {
		return "", errors.Wrap(err, "create reader request")
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "reader request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("reader returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read reader response")
	}
	if len(body) == 0 {
		return "", errors.New("empty response from jina reader")
	}
	return string(body), nil
}
