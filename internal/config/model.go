// internal/config/model.go
//
// Typed configuration model for HiveTag.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `HIVETAG_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so secrets (DB DSN
// password, JWT signing key) never live in flat files or git history.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.
package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the MySQL DSN.  It must carry `parseTime=true`; every date
// column scans into time.Time.  The DSN may be a `vault:` reference.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// Auth section
//

// Auth configures bearer-token sessions.  JWTSecret may be a `vault:`
// reference; TokenTTL defaults to 720h (30 days) when omitted.
type Auth struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

//
// QR section
//

// QR describes the public base URL embedded in generated codes.  Port 80 or
// 443 (or zero) is elided from the URL.
type QR struct {
	Scheme string `koanf:"scheme" validate:"required,oneof=http https"`
	Host   string `koanf:"host"   validate:"required"`
	Port   int    `koanf:"port"   validate:"min=0,max=65535"`
}

//
// Serial section
//

// Serial configures the sequence allocator.  An empty prefix falls back to
// the default ("TO").
type Serial struct {
	Prefix string `koanf:"prefix" validate:"omitempty,alpha,uppercase,max=8"`
}

//
// Geo section
//

// Geo points at an optional MaxMind database for scan-event geolocation.
// Empty path disables the lookup; scan events still record UA facts.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or HIVETAG_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	QR       QR       `koanf:"qr"`
	Serial   Serial   `koanf:"serial"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"`
}
