package security

import (
	"context"
	"time"

	"github.com/reviewhub/credential-service/internal/observability"
	"golang.org/x/sync/semaphore"
)

// BoundedHasher caps the number of concurrent hash computations. Hashing is
// CPU and memory bound, so unbounded fan-out under load starves the process.
type BoundedHasher struct {
	inner SecretHasher
	sem   *semaphore.Weighted
	label string
}

func NewBoundedHasher(inner SecretHasher, maxConcurrency int, label string) *BoundedHasher {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &BoundedHasher{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(maxConcurrency)),
		label: label,
	}
}

func (h *BoundedHasher) Hash(secret string) (string, error) {
	return h.HashContext(context.Background(), secret)
}

func (h *BoundedHasher) Verify(secret, encoded string) (bool, error) {
	return h.VerifyContext(context.Background(), secret, encoded)
}

func (h *BoundedHasher) HashContext(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", ErrInvalidSecret
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	start := time.Now()
	out, err := h.inner.Hash(secret)
	observability.RecordSecretHashDuration(ctx, "hash", h.label, outcomeOf(err), time.Since(start))
	return out, err
}

func (h *BoundedHasher) VerifyContext(ctx context.Context, secret, encoded string) (bool, error) {
	if secret == "" {
		return false, ErrInvalidSecret
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	start := time.Now()
	ok, err := h.inner.Verify(secret, encoded)
	observability.RecordSecretHashDuration(ctx, "verify", h.label, outcomeOf(err), time.Since(start))
	return ok, err
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
