package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates single-flight sends across replicas.
// The flight manager uses it to extend its local per-conversation
// serialization to multi-instance deployments.
type DistributedLocker interface {
	// Lock acquires the lock for the given key (a conversation ID),
	// blocking until acquired or ctx is canceled. The returned
	// UnlockFunc MUST be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
