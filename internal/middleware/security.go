// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects standard headers on every response:
//
//   • Strict-Transport-Security – forces HTTPS (2 years + preload), only
//     added when the deployment enforces HTTPS
//   • X-Content-Type-Options    – MIME-sniffing defence
//   • X-Frame-Options           – the QR page must not be framed
//   • Referrer-Policy           – drops the URL (and thus any token in it)
//     from outbound Referer headers
//
// Notes
// -----
// • Headers are set before next.ServeHTTP runs; they must be in place
//   before the handler calls WriteHeader.
// • Referrer-Policy matters here: the public page URL contains the access
//   token, and a leaked Referer would hand it to third-party origins.
// • Oxford commas, two spaces after periods.
package middleware

import "net/http"

// Security sets security headers for every response.  hsts controls whether
// the Strict-Transport-Security header is emitted.
func Security(hsts bool) func(http.Handler) http.Handler {
	const sts = "max-age=63072000; includeSubDomains; preload"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if hsts {
				h.Set("Strict-Transport-Security", sts)
			}
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "no-referrer")

			next.ServeHTTP(w, r)
		})
	}
}
