package security

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

type slowHasher struct {
	mu      sync.Mutex
	active  int32
	peak    int32
	release chan struct{}
}

func (h *slowHasher) enter() {
	n := atomic.AddInt32(&h.active, 1)
	h.mu.Lock()
	if n > h.peak {
		h.peak = n
	}
	h.mu.Unlock()
}

func (h *slowHasher) Hash(secret string) (string, error) {
	h.enter()
	defer atomic.AddInt32(&h.active, -1)
	time.Sleep(5 * time.Millisecond)
	return "h:" + secret, nil
}

func (h *slowHasher) Verify(secret, encoded string) (bool, error) {
	h.enter()
	defer atomic.AddInt32(&h.active, -1)
	if h.release != nil {
		<-h.release
	}
	return encoded == "h:"+secret, nil
}

func TestBoundedHasherCapsConcurrency(t *testing.T) {
	inner := &slowHasher{}
	h := NewBoundedHasher(inner, 2, "test")

	var g errgroup.Group
	for i := 0; i < 12; i++ {
		g.Go(func() error {
			_, err := HashSecret(context.Background(), h, "pin")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("hash: %v", err)
	}
	if inner.peak > 2 {
		t.Fatalf("expected at most 2 concurrent hashes, observed %d", inner.peak)
	}
}

func TestBoundedHasherHonoursContext(t *testing.T) {
	inner := &slowHasher{release: make(chan struct{})}
	h := NewBoundedHasher(inner, 1, "test")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.VerifyContext(context.Background(), "a", "h:a")
	}()
	for atomic.LoadInt32(&inner.active) == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := VerifySecret(ctx, h, "a", "h:a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while waiting for capacity, got %v", err)
	}
	close(inner.release)
	<-done
}

func TestBoundedHasherRejectsEmptySecretWithoutAcquiring(t *testing.T) {
	h := NewBoundedHasher(&slowHasher{}, 1, "test")
	if _, err := h.Hash(""); !errors.Is(err, ErrInvalidSecret) {
		t.Fatalf("expected ErrInvalidSecret, got %v", err)
	}
	if _, err := h.Verify("", "h:"); !errors.Is(err, ErrInvalidSecret) {
		t.Fatalf("expected ErrInvalidSecret, got %v", err)
	}
}
