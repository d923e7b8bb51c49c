// Package api implements the Mission Control HTTP surface using chi.
package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/yuhungliao/mission-control/internal/apperr"
	"github.com/yuhungliao/mission-control/internal/session"
)

// isPublic reports whether r bypasses the session gate.
func isPublic(r *http.Request) bool {
	p := r.URL.Path
	switch {
	case strings.HasPrefix(p, "/static/"), p == "/favicon.ico", strings.HasPrefix(p, "/health/"):
		return true
	case p == "/api/auth" && r.Method == http.MethodPost:
		return true
	case p == "/api/sync" && r.Method == http.MethodGet:
		return true
	}
	return false
}

// SessionGate returns middleware that requires a valid session cookie on
// every non-public route. Requests without one get the login page with 401.
func SessionGate(gate *session.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}
			if !gate.Configured() {
				writeError(w, http.StatusInternalServerError, msgMisconfigured)
				return
			}
			if c, err := r.Cookie(session.CookieName); err == nil && gate.Authenticated(c.Value) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, loginPage)
		})
	}
}

// SyncTokenAuth returns middleware that validates the sync bearer token from
// the Authorization header or the token query parameter. An empty configured
// token rejects every request.
func SyncTokenAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("token")
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				got = strings.TrimPrefix(auth, "Bearer ")
			}
			if token == "" || got == "" || !tokensEqual(got, token) {
				writeError(w, http.StatusUnauthorized, apperr.ErrUnauthorized.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokensEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

// ClientIP returns middleware that rewrites RemoteAddr from proxy headers when
// trustProxy is set. Otherwise the headers are ignored and the peer address is
// what login throttling keys on.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	if trustProxy {
		return middleware.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

// clientKey identifies the caller for attempt throttling.
func clientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}

func secureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
