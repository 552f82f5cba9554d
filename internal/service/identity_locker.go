package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reviewhub/credential-service/internal/observability"
)

var errIdentityLockTimeout = errors.New("identity lock wait timed out")

// IdentityLocker serializes read-modify-write cycles on one identity's
// credential record. The returned unlock func must be called exactly once.
type IdentityLocker interface {
	Lock(ctx context.Context, identity string) (unlock func(), err error)
}

type identityLockEntry struct {
	ch   chan struct{}
	refs int
}

// MemoryIdentityLocker is a keyed mutex for single-process deployments.
type MemoryIdentityLocker struct {
	mu    sync.Mutex
	locks map[string]*identityLockEntry
	wait  time.Duration
}

func NewMemoryIdentityLocker(wait time.Duration) *MemoryIdentityLocker {
	return &MemoryIdentityLocker{
		locks: make(map[string]*identityLockEntry),
		wait:  wait,
	}
}

func (l *MemoryIdentityLocker) Lock(ctx context.Context, identity string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[identity]
	if !ok {
		entry = &identityLockEntry{ch: make(chan struct{}, 1)}
		l.locks[identity] = entry
	}
	entry.refs++
	l.mu.Unlock()

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case entry.ch <- struct{}{}:
	case <-waitCtx.Done():
		l.release(identity, entry)
		observability.RecordIdentityLockEvent(ctx, "memory", "timeout")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceConflict, errIdentityLockTimeout)
	}
	observability.RecordIdentityLockEvent(ctx, "memory", "acquired")

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(identity, entry)
		})
	}, nil
}

func (l *MemoryIdentityLocker) release(identity string, entry *identityLockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, identity)
	}
}
