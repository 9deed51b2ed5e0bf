package data

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/devricklin/jina-sum-bridge/internal/biz/repo"
)

// rateLimitedReaderRepo spaces out extraction requests so retries do not
// exhaust the reader's request quota
type rateLimitedReaderRepo struct {
	inner   repo.ReaderRepo
	limiter *rate.Limiter
}

// NewRateLimitedReaderRepo limits inner to perMinute requests, with bursts
// of up to burst requests. perMinute <= 0 returns inner unchanged.
func NewRateLimitedReaderRepo(inner repo.ReaderRepo, perMinute, burst int) repo.ReaderRepo {
	if perMinute <= 0 {
		return inner
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimitedReaderRepo{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst),
	}
}

// FetchReadable waits for a slot, then delegates
func (r *rateLimitedReaderRepo) FetchReadable(ctx context.Context, target string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "wait for reader quota")
	}
	return r.inner.FetchReadable(ctx, target)
}
