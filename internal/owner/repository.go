// internal/owner/repository.go
//
// sqlx query helpers for owner accounts.
//
// Context
// -------
// One row per beekeeper.  Uniqueness of username and email is enforced both
// by pre-checks (so the API can name the offending field) and by UNIQUE
// indexes as the concurrent-write backstop.
package owner

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("owner not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

const recordColumns = `id, username, email, password_hash,
       farm_name, farm_address, farm_phone,
       qr_show_farm_info, qr_show_owner_contact, qr_show_hive_history,
       qr_show_health_status, qr_custom_message, qr_footer_text,
       created_at, updated_at`

// Repo wraps the shared pool.  All methods are safe for concurrent use.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// ByID fetches one owner row.
func (r *Repo) ByID(ctx context.Context, id int64) (*Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM owner WHERE id = ? LIMIT 1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ByUsername fetches one owner row for credential checks.
func (r *Repo) ByUsername(ctx context.Context, username string) (*Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM owner WHERE username = ? LIMIT 1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Count returns the number of accounts.  Zero means first-run setup is still
// pending.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM owner`)
	return n, err
}

// Insert creates an account and returns its generated id.  Uniqueness races
// fall through to the UNIQUE indexes; callers translate duplicate-key
// failures with database.IsDuplicate.
func (r *Repo) Insert(ctx context.Context, rec *Record) (int64, error) {
	const q = `
	    INSERT INTO owner
	           (username, email, password_hash, qr_footer_text, created_at, updated_at)
	    VALUES (?, ?, ?, ?, NOW(), NOW())`
	res, err := r.db.ExecContext(ctx, q, rec.Username, rec.Email, rec.PasswordHash, rec.FooterText)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UsernameTaken reports whether another account already holds username.
func (r *Repo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.taken(ctx, `SELECT 1 FROM owner WHERE username = ? AND id <> ? LIMIT 1`, username, excludeID)
}

// EmailTaken reports whether another account already holds email.
func (r *Repo) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.taken(ctx, `SELECT 1 FROM owner WHERE email = ? AND id <> ? LIMIT 1`, email, excludeID)
}

func (r *Repo) taken(ctx context.Context, q string, val string, excludeID int64) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, q, val, excludeID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update persists every mutable column of rec in one statement.  The caller
// loads, mutates, then saves; profile updates are low-rate so last-write-wins
// is acceptable.
func (r *Repo) Update(ctx context.Context, rec *Record) error {
	const q = `
	    UPDATE owner SET
	           username              = ?,
	           email                 = ?,
	           password_hash         = ?,
	           farm_name             = ?,
	           farm_address          = ?,
	           farm_phone            = ?,
	           qr_show_farm_info     = ?,
	           qr_show_owner_contact = ?,
	           qr_show_hive_history  = ?,
	           qr_show_health_status = ?,
	           qr_custom_message     = ?,
	           qr_footer_text        = ?,
	           updated_at            = NOW()
	     WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		rec.Username, rec.Email, rec.PasswordHash,
		rec.FarmName, rec.FarmAddress, rec.FarmPhone,
		rec.ShowFarmInfo, rec.ShowOwnerContact, rec.ShowHiveHistory,
		rec.ShowHealthStatus, rec.CustomMessage, rec.FooterText,
		rec.ID)
	return err
}
