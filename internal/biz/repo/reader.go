package repo

import "context"

// ReaderRepo turns a URL into readable page text through the extraction proxy
type ReaderRepo interface {
	// FetchReadable returns the extracted text of target. A non-2xx answer or
	// an empty body is an error.
	FetchReadable(ctx context.Context, target string) (string, error)
}
