package ports

import (
	"context"
	"time"

	"github.com/konvo/konvo/pkg/domain"
)

// SessionStore is the single gateway to durable session persistence. No
// higher layer reaches the backing store directly.
//
// A stored document carries a TTL; once it elapses the key reads as not
// found and the next contact starts a fresh session.
type SessionStore interface {
	// Get retrieves the document for a session key.
	// Returns domain.ErrSessionNotFound if the key does not exist or expired.
	Get(ctx context.Context, key string) (*domain.Session, error)

	// Save persists the document atomically and refreshes its TTL.
	Save(ctx context.Context, key string, s *domain.Session) error

	// Touch refreshes the TTL without rewriting the document.
	Touch(ctx context.Context, key string) error

	// Delete removes the document.
	Delete(ctx context.Context, key string) error

	// List returns the keys of live sessions.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// Locker coordinates per-key access across replicas. The session manager
// serializes in-process; the locker extends that guarantee to a fleet.
type Locker interface {
	// Lock blocks until the lock for key is acquired, the context is
	// canceled, or the TTL safety valve expires the holder. The returned
	// UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
