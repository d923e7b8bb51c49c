// Package session implements the password gate: stateless HMAC-signed
// session cookies and per-client failed-attempt throttling.
package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// CookieName is the session cookie set by a successful login.
	CookieName = "mc-session"
	// SessionTTL is how long an issued token stays valid.
	SessionTTL = 7 * 24 * time.Hour
	// maxClockSkew tolerates tokens minted by a slightly-ahead peer.
	maxClockSkew = time.Minute

	nonceBytes = 16
	sigHexLen  = sha256.Size * 2
)

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("session: signing secret is not configured")

type payload struct {
	TS    int64  `json:"ts"`
	Nonce string `json:"r"`
}

// Signer issues and verifies session tokens of the form
// base64url(payload) "." hex(hmac-sha256(payload)).
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer for secret. An empty secret is refused.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign mints a token issued at now.
func (s *Signer) Sign(now time.Time) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("session: nonce: %w", err)
	}
	raw, err := json.Marshal(payload{TS: now.UnixMilli(), Nonce: hex.EncodeToString(nonce)})
	if err != nil {
		return "", fmt.Errorf("session: encode payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw) + "." + s.mac(raw), nil
}

// Verify reports whether value is a well-formed token with a valid signature
// that is younger than SessionTTL at now. Any parse failure is just false.
func (s *Signer) Verify(value string, now time.Time) bool {
	encoded, sig, ok := strings.Cut(value, ".")
	if !ok || encoded == "" || len(sig) != sigHexLen {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(strings.ToLower(sig)), []byte(s.mac(raw))) {
		return false
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil || p.TS <= 0 {
		return false
	}
	age := now.Sub(time.UnixMilli(p.TS))
	return age > -maxClockSkew && age < SessionTTL
}

func (s *Signer) mac(data []byte) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
