// internal/auth/middleware.go
//
// Chi middleware for bearer authentication.
//
// Context
// -------
// Two flavours, one rule each:
//
//   - RequireOwner – /api routes.  Missing or invalid credential is a 401.
//   - MaybeOwner   – the public QR page.  The request NEVER fails here: a
//     credential that is absent, malformed, expired, or forged yields the
//     same anonymous context as no header at all.  Authenticate if possible,
//     otherwise continue; the resolver downgrades to the public view.
//
// Notes
// -----
// • Verification failures on the public path are logged at debug only, so a
//   scanner with a stale token does not spam the error log.
// • Oxford commas, two spaces after periods.
package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// bearerToken extracts the credential from the Authorization header.  ok is
// false when the header is absent or not a Bearer scheme.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// RequireOwner rejects requests without a verifiable bearer token.
func RequireOwner(s *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			id, err := s.Verify(raw)
			if err != nil {
				zap.S().Debugw("bearer rejected", "err", err)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), id)))
		})
	}
}

// MaybeOwner attaches the owner id when a valid token is present and passes
// the request through untouched otherwise.
func MaybeOwner(s *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := bearerToken(r); ok {
				if id, err := s.Verify(raw); err == nil {
					r = r.WithContext(WithOwner(r.Context(), id))
				} else {
					zap.S().Debugw("public page bearer ignored", "err", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
