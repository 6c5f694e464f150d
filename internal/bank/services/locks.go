package services

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// userLocks serializes ledger writes per username. Entries are reference
// counted and dropped once nobody holds or waits for them.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// acquire blocks until username's lock is held or ctx is done.
func (l *userLocks) acquire(ctx context.Context, username string) (release func(), err error) {
	l.mu.Lock()
	e, ok := l.locks[username]
	if !ok {
		e = &userLock{sem: semaphore.NewWeighted(1)}
		l.locks[username] = e
	}
	e.refs++
	l.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.drop(username, e)
		return nil, err
	}

	return func() {
		e.sem.Release(1)
		l.drop(username, e)
	}, nil
}

func (l *userLocks) drop(username string, e *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, username)
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
