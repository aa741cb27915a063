package flight

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumlabs/quorum/pkg/ports"
)

func TestWithLockSerializesSameConversation(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	var inFlight, maxInFlight int

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(context.Background(), "conv-1", func(ctx context.Context) error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
}

func TestWithLockAllowsDifferentConversations(t *testing.T) {
	m := NewManager()

	first := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = m.WithLock(context.Background(), "conv-1", func(ctx context.Context) error {
			close(first)
			<-release
			return nil
		})
	}()
	<-first

	// A different conversation must not wait on conv-1's lock.
	done := make(chan struct{})
	go func() {
		_ = m.WithLock(context.Background(), "conv-2", func(ctx context.Context) error {
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("independent conversation blocked behind an unrelated send")
	}
	close(release)
}

func TestWithLockPropagatesError(t *testing.T) {
	m := NewManager()
	sentinel := errors.New("send failed")

	err := m.WithLock(context.Background(), "conv-1", func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestWithLockCleansUpEntries(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.WithLock(context.Background(), "conv-1", func(ctx context.Context) error {
		return nil
	}))

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks)
}

// recordingLocker captures distributed lock traffic.
type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	fail     error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return nil, l.fail
	}
	l.locked = append(l.locked, key)
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked = append(l.unlocked, key)
		return nil
	}, nil
}

func TestWithLockUsesDistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	m := NewManager(WithLocker(locker), WithLockTTL(time.Second))

	require.NoError(t, m.WithLock(context.Background(), "conv-1", func(ctx context.Context) error {
		return nil
	}))

	assert.Equal(t, []string{"conv-1"}, locker.locked)
	assert.Equal(t, []string{"conv-1"}, locker.unlocked)
}

func TestWithLockDistributedFailure(t *testing.T) {
	locker := &recordingLocker{fail: errors.New("redis down")}
	m := NewManager(WithLocker(locker))

	called := false
	err := m.WithLock(context.Background(), "conv-1", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called, "fn must not run without the distributed lock")
}
