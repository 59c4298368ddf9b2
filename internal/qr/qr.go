// internal/qr/qr.go
//
// QR artifact generation.
//
// Context
// -------
// The printed code encodes `{scheme}://{host}[:{port}]/hives/{token}`.  Only
// the access token ever appears in the URL; the serial number is the
// owner-facing name and must stay out of anything publicly reachable.  Ports
// 80 and 443 are elided so printed codes survive a move behind a standard
// proxy.
//
// Notes
// -----
// • Error-correction level M; the label may be laminated or weathered.
// • Oxford commas, two spaces after periods.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 320

// Builder renders public URLs and their QR images for one deployment.
type Builder struct {
	Scheme string
	Host   string
	Port   int
}

// URL returns the public lookup address for token.
func (b Builder) URL(token string) string {
	if b.Port == 0 || b.Port == 80 || b.Port == 443 {
		return fmt.Sprintf("%s://%s/hives/%s", b.Scheme, b.Host, token)
	}
	return fmt.Sprintf("%s://%s:%d/hives/%s", b.Scheme, b.Host, b.Port, token)
}

// PNG encodes the lookup URL for token as a size×size PNG.
func (b Builder) PNG(token string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(b.URL(token), qrcode.Medium, size)
}
