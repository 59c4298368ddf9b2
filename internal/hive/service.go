// internal/hive/service.go
//
// Registration and lifecycle operations.
//
// Context
// -------
// Create is where the two allocators meet the storage backstop.  The serial
// and token computed before the INSERT are candidates only: two concurrent
// registrations can compute the same serial in the read-then-insert gap.
// When the UNIQUE index rejects the row, the whole allocation is recomputed
// with fresh values; after maxCreateAttempts the caller gets
// ErrAllocationContention and may retry the request.
//
// Mutations (update, delete, sell, unsell) load the record unscoped and then
// check ownership, so a caller touching someone else's hive gets ErrNotOwner
// rather than a silent 404.  Reads stay owner-scoped and simply miss.
//
// Notes
// -----
// • Validation runs before any allocator or token logic.
// • Oxford commas, two spaces after periods.
package hive

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/apiarylabs/hivetag/internal/database"
	"github.com/apiarylabs/hivetag/internal/metrics"
)

const (
	// maxCreateAttempts bounds the allocation retry loop.  Conflicts are
	// near-impossible for tokens and rare for serials, so three is generous.
	maxCreateAttempts = 3

	// maxNotesLen bounds the free-text field.
	maxNotesLen = 2000
)

// CreateInput carries the caller-supplied lifecycle fields.  Serial, token,
// and owner are never accepted from the outside.
type CreateInput struct {
	ImportDate time.Time
	SplitDate  *time.Time
	Health     HealthStatus
	Notes      string
}

// UpdateInput applies partial updates.  Nil pointers leave the field alone;
// ClearSplitDate removes a split date that was set by mistake.
type UpdateInput struct {
	ImportDate     *time.Time
	SplitDate      *time.Time
	ClearSplitDate bool
	Health         *HealthStatus
	Notes          *string
}

// Service owns hive business rules on top of Repo.
type Service struct {
	repo   *Repo
	prefix string
	log    *zap.SugaredLogger
}

// NewService wires a Service.  prefix defaults to DefaultSerialPrefix when
// empty so a zero config still allocates "TO001".
func NewService(repo *Repo, prefix string, log *zap.SugaredLogger) *Service {
	if prefix == "" {
		prefix = DefaultSerialPrefix
	}
	return &Service{repo: repo, prefix: prefix, log: log}
}

// Repo exposes the underlying repository for read-path collaborators (the
// access resolver and the QR handler resolve tokens and serials directly).
func (s *Service) Repo() *Repo { return s.repo }

// Create validates in, allocates identifiers, and inserts the record.
func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (*Record, error) {
	if err := validateFields(in.ImportDate, in.SplitDate, in.Health, in.Notes); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		last, err := s.repo.LastSerial(ctx, s.prefix)
		if err != nil {
			return nil, err
		}
		serial := NextSerial(s.prefix, last)

		token, err := s.uniqueToken(ctx)
		if err != nil {
			return nil, err
		}

		rec := &Record{
			SerialNumber: serial,
			AccessToken:  token,
			OwnerID:      ownerID,
			ImportDate:   in.ImportDate,
			SplitDate:    in.SplitDate,
			Health:       in.Health,
			Notes:        in.Notes,
		}

		err = s.repo.Insert(ctx, rec)
		if err == nil {
			now := time.Now().UTC()
			rec.CreatedAt, rec.UpdatedAt = now, now
			metrics.HivesCreatedTotal.Inc()
			s.log.Infow("hive created", "serial", serial, "owner", ownerID)
			return rec, nil
		}
		if database.IsDuplicate(err) {
			metrics.AllocationConflictsTotal.Inc()
			s.log.Warnw("allocation conflict, retrying",
				"serial", serial, "attempt", attempt)
			continue
		}
		return nil, err
	}
	return nil, ErrAllocationContention
}

// uniqueToken draws candidates until one is unused.  The loop terminates in
// one iteration in practice (62^12 values); it exists because token
// uniqueness is a functional requirement, not just an anti-guessing one.
func (s *Service) uniqueToken(ctx context.Context) (string, error) {
	for {
		token, err := NewToken()
		if err != nil {
			return "", err
		}
		exists, err := s.repo.TokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
		s.log.Warnw("token collision, redrawing")
	}
}

// Get returns one of the caller's hives.  A hive owned by someone else is
// reported as missing, same as on the list endpoints.
func (s *Service) Get(ctx context.Context, ownerID int64, serial string) (*Record, error) {
	rec, err := s.repo.BySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Update applies a partial update to the caller's hive.
func (s *Service) Update(ctx context.Context, ownerID int64, serial string, in UpdateInput) (*Record, error) {
	rec, err := s.owned(ctx, ownerID, serial)
	if err != nil {
		return nil, err
	}

	if in.ImportDate != nil {
		rec.ImportDate = *in.ImportDate
	}
	if in.ClearSplitDate {
		rec.SplitDate = nil
	} else if in.SplitDate != nil {
		rec.SplitDate = in.SplitDate
	}
	if in.Health != nil {
		rec.Health = *in.Health
	}
	if in.Notes != nil {
		rec.Notes = *in.Notes
	}

	if err := validateFields(rec.ImportDate, rec.SplitDate, rec.Health, rec.Notes); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Infow("hive updated", "serial", serial, "owner", ownerID)
	return rec, nil
}

// Delete removes the caller's hive.  Hard delete on explicit request.
func (s *Service) Delete(ctx context.Context, ownerID int64, serial string) error {
	if _, err := s.owned(ctx, ownerID, serial); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, serial); err != nil {
		return err
	}
	s.log.Infow("hive deleted", "serial", serial, "owner", ownerID)
	return nil
}

// Sell marks the hive sold as of today.  Both lifecycle facts (flag and
// date) live in the single sold_date column, so the one-statement UPDATE in
// MarkSold is the whole transaction; no intermediate state is observable.
func (s *Service) Sell(ctx context.Context, ownerID int64, serial string) (*Record, error) {
	rec, err := s.owned(ctx, ownerID, serial)
	if err != nil {
		return nil, err
	}
	if rec.Sold() {
		return nil, ErrAlreadySold
	}

	today := dateOnly(time.Now().UTC())
	if err := s.repo.MarkSold(ctx, serial, today); err != nil {
		return nil, err
	}
	rec.SoldDate = &today
	s.log.Infow("hive sold", "serial", serial, "owner", ownerID)
	return rec, nil
}

// Unsell returns a sold hive to the active inventory.
func (s *Service) Unsell(ctx context.Context, ownerID int64, serial string) (*Record, error) {
	rec, err := s.owned(ctx, ownerID, serial)
	if err != nil {
		return nil, err
	}
	if !rec.Sold() {
		return nil, ErrNotSold
	}

	if err := s.repo.UnmarkSold(ctx, serial); err != nil {
		return nil, err
	}
	rec.SoldDate = nil
	s.log.Infow("hive unsold", "serial", serial, "owner", ownerID)
	return rec, nil
}

// List returns one page of the caller's hives plus the unpaginated total.
func (s *Service) List(ctx context.Context, ownerID int64, opts ListOptions) ([]Record, int, error) {
	return s.repo.List(ctx, ownerID, opts)
}

// HealthCounts tallies the caller's active herd by status.
func (s *Service) HealthCounts(ctx context.Context, ownerID int64) (map[HealthStatus]int, error) {
	return s.repo.HealthCounts(ctx, ownerID)
}

// StatsFor aggregates the caller's dashboard counts.
func (s *Service) StatsFor(ctx context.Context, ownerID int64) (*Stats, error) {
	return s.repo.OwnerStats(ctx, ownerID)
}

// owned loads serial unscoped and enforces ownership for mutations.
func (s *Service) owned(ctx context.Context, ownerID int64, serial string) (*Record, error) {
	rec, err := s.repo.BySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return rec, nil
}

// validateFields rejects malformed lifecycle fields before any allocator or
// storage work happens.
func validateFields(importDate time.Time, splitDate *time.Time, health HealthStatus, notes string) error {
	if importDate.IsZero() {
		return &ValidationError{Field: "import_date", Message: "required"}
	}
	if splitDate != nil && splitDate.Before(importDate) {
		return &ValidationError{Field: "split_date", Message: "must not precede import_date"}
	}
	if !health.Valid() {
		return &ValidationError{Field: "health_status", Message: "unknown value"}
	}
	if len(notes) > maxNotesLen {
		return &ValidationError{Field: "notes", Message: "too long"}
	}
	return nil
}

// dateOnly truncates t to midnight UTC; lifecycle dates carry no time part.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
