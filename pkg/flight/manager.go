// Package flight serializes sends per conversation. The reducer has no
// merge strategy for two overlapping sends against the same transcript,
// so the design contract is at most one in-flight send per conversation;
// the Manager enforces it instead of leaving it to caller discipline.
package flight

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quorumlabs/quorum/internal/logging"
	"github.com/quorumlabs/quorum/pkg/ports"
)

// lockEntry holds a per-conversation mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager hands out per-conversation locks, garbage-collecting entries
// by reference counting. With a DistributedLocker configured, the
// serialization extends across replicas.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL (default 2 minutes). The
// TTL bounds how long a crashed holder can block a conversation.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger configures a logger for deferred unlock errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a flight manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:  make(map[string]*lockEntry),
		ttl:    2 * time.Minute,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates the entry and bumps its refcount. The caller
// must Lock entry.mu and then call release(conversationID) after
// unlocking.
func (m *Manager) acquire(conversationID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[conversationID]
	if !ok {
		entry = &lockEntry{}
		m.locks[conversationID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[conversationID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, conversationID)
	}
}

// WithLock runs fn while holding the conversation's send lock. A
// concurrent send against the same conversation blocks here until the
// first one finishes; sends on different conversations proceed in
// parallel.
func (m *Manager) WithLock(ctx context.Context, conversationID string, fn func(ctx context.Context) error) error {
	entry := m.acquire(conversationID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(conversationID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, conversationID, m.ttl)
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed send lock",
					"conversation", conversationID, "err", err)
			}
		}()
	}

	return fn(ctx)
}
