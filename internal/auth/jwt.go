// internal/auth/jwt.go
//
// Bearer-token mint and verify (HS256).
//
// Context
// -------
// Sessions are stateless JWTs: subject is the owner id, lifetime comes from
// config (auth.token_ttl).  Logout is client-side discard; there is no
// server-side revocation list, so the TTL is the blast radius of a leaked
// token.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "hivetag"

// ErrInvalidToken covers every verification failure: bad signature, expired,
// malformed subject, wrong algorithm.  Callers that can degrade to anonymous
// do so on any error; the distinction is only logged.
var ErrInvalidToken = errors.New("invalid bearer token")

// Signer mints and verifies owner tokens.  Safe for concurrent use.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner builds a Signer.  ttl <= 0 falls back to 30 days, the original
// session length.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Mint returns a signed token for ownerID.
func (s *Signer) Mint(ownerID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(ownerID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses raw and returns the owner id it was minted for.
func (s *Signer) Verify(raw string) (int64, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TTL reports the configured token lifetime (used by login responses).
func (s *Signer) TTL() time.Duration { return s.ttl }
