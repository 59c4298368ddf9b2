package owner

import "time"

// DisplaySettings are the per-owner toggles that shape the public QR page.
// The access resolver merges each section into the response only when its
// flag is true; the flags themselves are never exposed to anonymous callers.
type DisplaySettings struct {
	ShowFarmInfo     bool    `db:"qr_show_farm_info"`
	ShowOwnerContact bool    `db:"qr_show_owner_contact"`
	ShowHiveHistory  bool    `db:"qr_show_hive_history"`
	ShowHealthStatus bool    `db:"qr_show_health_status"`
	CustomMessage    *string `db:"qr_custom_message"`
	FooterText       string  `db:"qr_footer_text"`
}

// Record mirrors one row in the `owner` table.  PasswordHash is a bcrypt
// digest and never leaves the package in API payloads.
type Record struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FarmName     *string   `db:"farm_name"`
	FarmAddress  *string   `db:"farm_address"`
	FarmPhone    *string   `db:"farm_phone"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	DisplaySettings
}
