package check

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathLocksSerializeSamePath(t *testing.T) {
	var locks pathLocks
	unlock, err := locks.acquire(context.Background(), "/tmp/a.pl.lint")
	require.NoError(t, err)

	other, err := locks.acquire(context.Background(), "/tmp/b.pl.lint")
	require.NoError(t, err, "different paths do not contend")
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = locks.acquire(ctx, "/tmp/a.pl.lint")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan func())
	go func() {
		next, err := locks.acquire(context.Background(), "/tmp/a.pl.lint")
		if err == nil {
			acquired <- next
		}
	}()
	select {
	case <-acquired:
		t.Fatal("second holder got the lock early")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	select {
	case next := <-acquired:
		next()
	case <-time.After(testWait):
		t.Fatal("lock never handed over")
	}

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
