// internal/hive/repository.go
//
// sqlx query helpers for hive records.
//
// Context
// -------
// The `hive` table is the only shared mutable state in the system.  Its two
// UNIQUE indexes (primary key on serial_number, secondary on access_token)
// are the authoritative uniqueness guarantee; everything the allocator
// computes beforehand is best-effort.  All list queries are owner-scoped, so
// row-level tenancy never depends on the caller remembering a WHERE clause
// at the handler layer.
//
// Notes
// -----
// • Sort fields pass through a whitelist; user input never reaches ORDER BY.
// • Oxford commas, two spaces after periods.
package hive

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const recordColumns = `serial_number, access_token, owner_id, import_date,
       split_date, health_status, notes, sold_date, created_at, updated_at`

// sortColumns whitelists the fields the list endpoints may order by.
var sortColumns = map[string]string{
	"serial_number": "serial_number",
	"created_at":    "created_at",
	"import_date":   "import_date",
	"split_date":    "split_date",
	"sold_date":     "sold_date",
	"health_status": "health_status",
}

// ListOptions narrows and orders an owner's hive listing.
type ListOptions struct {
	Sold       bool       // active (false) or sold (true) inventory
	Serial     string     // substring match on serial_number
	ImportDate *time.Time // exact-day filters
	SplitDate  *time.Time
	SoldDate   *time.Time
	SortField  string // one of sortColumns; repository falls back to created_at
	SortDesc   bool
	Page       int // 1-based
	PerPage    int
}

// Stats aggregates one owner's herd counts.
type Stats struct {
	Total   int `db:"total"`
	Active  int `db:"active"`
	Sold    int `db:"sold"`
	Healthy int `db:"healthy"`
}

// Repo wraps the shared pool.  All methods are safe for concurrent use.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// LastSerial returns the current maximum serial for prefix, or "" when no
// record with the prefix exists.  Ordering by length first keeps the answer
// correct after the numeric part outgrows its zero pad ("TO1000" > "TO999").
func (r *Repo) LastSerial(ctx context.Context, prefix string) (string, error) {
	const q = `
	    SELECT serial_number
	      FROM hive
	     WHERE serial_number LIKE ?
	  ORDER BY LENGTH(serial_number) DESC, serial_number DESC
	     LIMIT 1`
	var last string
	err := r.db.GetContext(ctx, &last, q, prefix+"%")
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return last, nil
}

// TokenExists reports whether any record already holds token.
func (r *Repo) TokenExists(ctx context.Context, token string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one,
		`SELECT 1 FROM hive WHERE access_token = ? LIMIT 1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert writes a freshly allocated record.  Duplicate-key failures are
// returned verbatim so the service can recognise a lost allocation race via
// database.IsDuplicate and retry with new identifiers.
func (r *Repo) Insert(ctx context.Context, rec *Record) error {
	const q = `
	    INSERT INTO hive
	           (serial_number, access_token, owner_id, import_date, split_date,
	            health_status, notes, created_at, updated_at)
	    VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`
	_, err := r.db.ExecContext(ctx, q,
		rec.SerialNumber, rec.AccessToken, rec.OwnerID,
		rec.ImportDate, rec.SplitDate, rec.Health, rec.Notes)
	return err
}

// ByToken resolves the public identifier.  Unknown and malformed tokens are
// indistinguishable: both surface ErrNotFound.
func (r *Repo) ByToken(ctx context.Context, token string) (*Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM hive WHERE access_token = ? LIMIT 1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// BySerial fetches a record regardless of owner.  Mutating callers check
// ownership themselves so they can tell "not yours" (ErrNotOwner) apart from
// "does not exist" (ErrNotFound).
func (r *Repo) BySerial(ctx context.Context, serial string) (*Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM hive WHERE serial_number = ? LIMIT 1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, serial); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Update persists the mutable lifecycle fields.  Serial, token, and owner
// are immutable after creation and never appear in a SET clause.
func (r *Repo) Update(ctx context.Context, rec *Record) error {
	const q = `
	    UPDATE hive SET
	           import_date   = ?,
	           split_date    = ?,
	           health_status = ?,
	           notes         = ?,
	           updated_at    = NOW()
	     WHERE serial_number = ?`
	_, err := r.db.ExecContext(ctx, q,
		rec.ImportDate, rec.SplitDate, rec.Health, rec.Notes, rec.SerialNumber)
	return err
}

// Delete removes a record.  Hard delete, no tombstone.
func (r *Repo) Delete(ctx context.Context, serial string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM hive WHERE serial_number = ?`, serial)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSold flips the record into the sold state in one statement.  The
// `sold_date IS NULL` guard makes the transition atomic with respect to a
// concurrent sell: exactly one caller sees an affected row, the other gets
// ErrAlreadySold and the original sale date is never overwritten.
func (r *Repo) MarkSold(ctx context.Context, serial string, date time.Time) error {
	const q = `
	    UPDATE hive
	       SET sold_date = ?, updated_at = NOW()
	     WHERE serial_number = ? AND sold_date IS NULL`
	res, err := r.db.ExecContext(ctx, q, date, serial)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadySold
	}
	return nil
}

// UnmarkSold returns the record to the active state.  Symmetric guard to
// MarkSold; unselling an active hive is rejected.
func (r *Repo) UnmarkSold(ctx context.Context, serial string) error {
	const q = `
	    UPDATE hive
	       SET sold_date = NULL, updated_at = NOW()
	     WHERE serial_number = ? AND sold_date IS NOT NULL`
	res, err := r.db.ExecContext(ctx, q, serial)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotSold
	}
	return nil
}

// List returns one page of an owner's records plus the unpaginated total.
func (r *Repo) List(ctx context.Context, ownerID int64, opts ListOptions) ([]Record, int, error) {
	where, args := listFilter(ownerID, opts)

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM hive WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[opts.SortField]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if opts.SortDesc {
		dir = "DESC"
	}

	page, perPage := opts.Page, opts.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	q := `SELECT ` + recordColumns + ` FROM hive WHERE ` + where +
		` ORDER BY ` + col + ` ` + dir + `, serial_number ASC LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows := make([]Record, 0, perPage)
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// HealthCounts tallies the active herd by status.
func (r *Repo) HealthCounts(ctx context.Context, ownerID int64) (map[HealthStatus]int, error) {
	const q = `
	    SELECT health_status, COUNT(*) AS n
	      FROM hive
	     WHERE owner_id = ? AND sold_date IS NULL
	  GROUP BY health_status`
	rows := []struct {
		Health HealthStatus `db:"health_status"`
		N      int          `db:"n"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, err
	}
	out := make(map[HealthStatus]int, len(rows))
	for _, row := range rows {
		out[row.Health] = row.N
	}
	return out, nil
}

// OwnerStats aggregates herd counts for the dashboard in one round trip.
func (r *Repo) OwnerStats(ctx context.Context, ownerID int64) (*Stats, error) {
	const q = `
	    SELECT COUNT(*)                                                 AS total,
	           COALESCE(SUM(sold_date IS NULL), 0)                      AS active,
	           COALESCE(SUM(sold_date IS NOT NULL), 0)                  AS sold,
	           COALESCE(SUM(sold_date IS NULL AND health_status = ?), 0) AS healthy
	      FROM hive
	     WHERE owner_id = ?`
	var s Stats
	if err := r.db.GetContext(ctx, &s, q, HealthGood, ownerID); err != nil {
		return nil, err
	}
	return &s, nil
}

// listFilter builds the WHERE clause shared by the count and page queries.
func listFilter(ownerID int64, opts ListOptions) (string, []any) {
	conds := []string{"owner_id = ?"}
	args := []any{ownerID}

	if opts.Sold {
		conds = append(conds, "sold_date IS NOT NULL")
	} else {
		conds = append(conds, "sold_date IS NULL")
	}
	if opts.Serial != "" {
		conds = append(conds, "serial_number LIKE ?")
		args = append(args, "%"+opts.Serial+"%")
	}
	if opts.ImportDate != nil {
		conds = append(conds, "import_date = ?")
		args = append(args, *opts.ImportDate)
	}
	if opts.SplitDate != nil {
		conds = append(conds, "split_date = ?")
		args = append(args, *opts.SplitDate)
	}
	if opts.SoldDate != nil {
		conds = append(conds, "sold_date = ?")
		args = append(args, *opts.SoldDate)
	}
	return strings.Join(conds, " AND "), args
}
