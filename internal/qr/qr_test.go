// internal/qr/qr_test.go
//
// Unit-tests for public URL and PNG generation.
//
// Run: go test ./internal/qr -v

package qr

import (
	"bytes"
	"testing"
)

func TestURLPortElision(t *testing.T) {
	cases := []struct {
		name string
		b    Builder
		want string
	}{
		{"zero port", Builder{"https", "farm.example.com", 0},
			"https://farm.example.com/hives/Tok123456789"},
		{"explicit 443", Builder{"https", "farm.example.com", 443},
			"https://farm.example.com/hives/Tok123456789"},
		{"explicit 80", Builder{"http", "farm.example.com", 80},
			"http://farm.example.com/hives/Tok123456789"},
		{"nonstandard port kept", Builder{"https", "farm.example.com", 8443},
			"https://farm.example.com:8443/hives/Tok123456789"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.b.URL("Tok123456789"); got != tc.want {
				t.Fatalf("URL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPNGHeader(t *testing.T) {
	b := Builder{Scheme: "https", Host: "farm.example.com"}
	png, err := b.PNG("Tok123456789", 0)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("output is not a PNG")
	}
}
