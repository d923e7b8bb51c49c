package session

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yuhungliao/mission-control/internal/apperr"
)

// Throttling constants.
const (
	MaxAttempts     = 5
	AttemptWindow   = 15 * time.Minute
	LockoutDuration = 5 * time.Minute
)

// Gate checks the shared password, issues session tokens, and throttles
// failed attempts per client.
type Gate struct {
	password string
	signer   *Signer
	store    AttemptStore
	logger   *slog.Logger
	now      func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// WithLogger sets the logger for security events.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// NewGate creates a Gate. An empty password leaves the gate unconfigured:
// every login fails with apperr.ErrMisconfigured.
func NewGate(password string, signer *Signer, store AttemptStore, opts ...GateOption) *Gate {
	g := &Gate{
		password: password,
		signer:   signer,
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configured reports whether a password is set.
func (g *Gate) Configured() bool {
	return g.password != ""
}

// Authenticated verifies a session cookie value.
func (g *Gate) Authenticated(cookieValue string) bool {
	return g.signer.Verify(cookieValue, g.now())
}

// Admit runs the pre-attempt checks for client without consuming an attempt:
// configuration, active lockout, then stale-record discard.
func (g *Gate) Admit(ctx context.Context, client string) error {
	if !g.Configured() {
		return apperr.ErrMisconfigured
	}
	_, err := g.admit(ctx, client, g.now())
	return err
}

func (g *Gate) admit(ctx context.Context, client string, now time.Time) (Record, error) {
	rec, ok, err := g.store.Get(ctx, client)
	if err != nil {
		return Record{}, fmt.Errorf("session: load attempts: %w", err)
	}
	if !ok {
		return Record{}, nil
	}
	if rec.Locked(now) {
		return Record{}, &RateLimitError{RetryAfter: ceilSeconds(rec.LockedUntil.Sub(now))}
	}
	if now.Sub(rec.LastAttempt) > AttemptWindow {
		if err := g.store.Delete(ctx, client); err != nil {
			return Record{}, fmt.Errorf("session: discard stale attempts: %w", err)
		}
		return Record{}, nil
	}
	return rec, nil
}

// Login checks password for client and returns a fresh session token.
// Failures are *AuthError, *RateLimitError, apperr.ErrMisconfigured, or a
// wrapped store error.
func (g *Gate) Login(ctx context.Context, client, password string) (string, error) {
	if !g.Configured() {
		return "", apperr.ErrMisconfigured
	}
	now := g.now()
	rec, err := g.admit(ctx, client, now)
	if err != nil {
		return "", err
	}

	if !passwordsEqual(password, g.password) {
		rec.Count++
		rec.LastAttempt = now
		if rec.Count >= MaxAttempts {
			rec.LockedUntil = now.Add(LockoutDuration)
			rec.Count = 0
			if err := g.store.Set(ctx, client, rec); err != nil {
				return "", fmt.Errorf("session: save attempts: %w", err)
			}
			g.logger.Warn("security.locked", slog.String("client", client))
			return "", &RateLimitError{RetryAfter: int(LockoutDuration / time.Second)}
		}
		if err := g.store.Set(ctx, client, rec); err != nil {
			return "", fmt.Errorf("session: save attempts: %w", err)
		}
		g.logger.Info("security.login_failed", slog.String("client", client), slog.Int("attempt", rec.Count))
		return "", &AuthError{Remaining: MaxAttempts - rec.Count}
	}

	if err := g.store.Delete(ctx, client); err != nil {
		return "", fmt.Errorf("session: clear attempts: %w", err)
	}
	return g.signer.Sign(now)
}

func passwordsEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
