// internal/hive/token.go
//
// Access-token minting.
//
// Context
// -------
// The access token is the only identifier that ever appears in a QR URL, and
// therefore the entire authorization boundary of the public lookup page.  It
// must be unguessable: twelve symbols from the 62-letter alphanumeric
// alphabet give 62^12 ≈ 3.2×10^21 values, so a uniform crypto/rand draw is
// collision-free for any realistic herd size.  Uniqueness is still a
// functional requirement (the token resolves to exactly one hive), so the
// creation service re-draws on the astronomically rare collision and the
// UNIQUE index backstops the read-then-insert gap.
//
// Notes
// -----
// • rand.Int per symbol avoids modulo bias; never swap in math/rand.
// • Oxford commas, two spaces after periods.
package hive

import (
	"crypto/rand"
	"math/big"
)

// TokenLength is fixed; the public endpoint does not key on it (malformed
// tokens 404 like unknown ones), but the QR artifact always carries twelve
// symbols.
const TokenLength = 12

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(tokenAlphabet)))

// NewToken draws one uniformly random candidate token from the crypto-secure
// source.  The only error path is the platform entropy pool failing.
func NewToken() (string, error) {
	buf := make([]byte, TokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ValidTokenByte reports whether b belongs to the token alphabet.  Used by
// tests; the resolver itself never pre-screens tokens so that malformed and
// unknown ones are indistinguishable to a prober.
func ValidTokenByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	return false
}
