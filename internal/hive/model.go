package hive

import "time"

// HealthStatus is a closed enumeration.  The database column is a plain
// VARCHAR, so Valid() is checked at every write boundary instead of trusting
// the driver.
type HealthStatus string

const (
	HealthGood    HealthStatus = "good"
	HealthAverage HealthStatus = "average"
	HealthWeak    HealthStatus = "weak"
)

// Valid reports whether h is one of the known statuses.
func (h HealthStatus) Valid() bool {
	switch h {
	case HealthGood, HealthAverage, HealthWeak:
		return true
	}
	return false
}

// HealthValues lists every accepted status, in display order.
func HealthValues() []HealthStatus {
	return []HealthStatus{HealthGood, HealthAverage, HealthWeak}
}

// Record mirrors one row in the `hive` table.  Lifecycle state is carried by
// a single nullable date:
//
//   - SoldDate == nil – hive is active.
//   - SoldDate != nil – hive was sold on that date.
//
// There is deliberately no separate boolean column; "sold without a date" and
// "dated but not sold" are unrepresentable.
type Record struct {
	SerialNumber string       `db:"serial_number"`
	AccessToken  string       `db:"access_token"`
	OwnerID      int64        `db:"owner_id"`
	ImportDate   time.Time    `db:"import_date"`
	SplitDate    *time.Time   `db:"split_date"`
	Health       HealthStatus `db:"health_status"`
	Notes        string       `db:"notes"`
	SoldDate     *time.Time   `db:"sold_date"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// Sold reports whether the record has left the active inventory.
func (r *Record) Sold() bool { return r.SoldDate != nil }
