package check

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// pathLocks serializes runs that share a temp file. A run holds the lock
// from writing its copy until the copy is removed, so a canceled run can
// never delete the file of the run that replaced it.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	sem  *semaphore.Weighted
	refs int
}

// acquire blocks until path is free or ctx is done. The returned func
// releases the lock.
func (l *pathLocks) acquire(ctx context.Context, path string) (func(), error) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*pathLock)
	}
	lk, ok := l.locks[path]
	if !ok {
		lk = &pathLock{sem: semaphore.NewWeighted(1)}
		l.locks[path] = lk
	}
	lk.refs++
	l.mu.Unlock()

	if err := lk.sem.Acquire(ctx, 1); err != nil {
		l.drop(path, lk)
		return nil, err
	}
	return func() {
		lk.sem.Release(1)
		l.drop(path, lk)
	}, nil
}

func (l *pathLocks) drop(path string, lk *pathLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, path)
	}
}
