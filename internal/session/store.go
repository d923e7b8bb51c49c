package session

import (
	"context"
	"time"
)

// Record is the failed-attempt state for one client address.
type Record struct {
	Count       int       `json:"count"`
	LastAttempt time.Time `json:"lastAttempt"`
	LockedUntil time.Time `json:"lockedUntil"`
}

// Locked reports whether the record is in lockout at now.
func (r Record) Locked(now time.Time) bool {
	return r.LockedUntil.After(now)
}

// AttemptStore holds Records keyed by client address. Implementations must be
// safe for concurrent use; concurrent attempts from one client may race,
// which at worst shifts the lockout by an attempt.
type AttemptStore interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Set(ctx context.Context, key string, rec Record) error
	Delete(ctx context.Context, key string) error
}
