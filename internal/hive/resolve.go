// internal/hive/resolve.go
//
// Access resolver for the public QR page.
//
// Context
// -------
// GET /hives/{token} is reachable by anyone holding a printed QR code.  The
// resolver decides what that person sees:
//
//   - anonymous caller                → public view
//   - authenticated, different owner  → public view (auth grants nothing)
//   - authenticated, same owner       → public view + is_admin = true
//
// Anonymity is a normal value here, not an error path: the HTTP layer hands
// in (callerID, authed) and a bad credential simply arrives as authed =
// false.  Unknown and malformed tokens both return ErrNotFound so a prober
// cannot learn which token shapes exist.
//
// The owner's display flags gate each optional section; a flag that is off
// removes the fields entirely rather than blanking them, and the flags
// themselves are never echoed back.
//
// Notes
// -----
// • Read-only; the scan recorder runs separately in the handler.
// • Oxford commas, two spaces after periods.
package hive

import (
	"context"
	"errors"
	"time"

	"github.com/apiarylabs/hivetag/internal/metrics"
	"github.com/apiarylabs/hivetag/internal/owner"
)

// RecordSource resolves tokens; satisfied by *Repo.
type RecordSource interface {
	ByToken(ctx context.Context, token string) (*Record, error)
}

// OwnerSource supplies owner rows; satisfied by *owner.Cache.
type OwnerSource interface {
	Get(ctx context.Context, id int64) (*owner.Record, error)
}

// TokenView is the payload of the public page.  Anonymous and wrong-owner
// callers receive identical shapes; only IsAdmin varies for the owner.
type TokenView struct {
	Hive     HiveView      `json:"hive"`
	Business *BusinessView `json:"business"`
	IsAdmin  bool          `json:"is_admin"`
}

// HiveView carries the record fields.  History dates and health are present
// only when the owner's corresponding display flag is on.
type HiveView struct {
	SerialNumber string  `json:"serial_number"`
	ImportDate   *string `json:"import_date,omitempty"`
	SplitDate    *string `json:"split_date,omitempty"`
	HealthStatus *string `json:"health_status,omitempty"`
	Notes        string  `json:"notes"`
	IsSold       bool    `json:"is_sold"`
	SoldDate     *string `json:"sold_date,omitempty"`
}

// BusinessView carries the owner-configured display block.
type BusinessView struct {
	FarmName      *string `json:"farm_name,omitempty"`
	FarmAddress   *string `json:"farm_address,omitempty"`
	FarmPhone     *string `json:"farm_phone,omitempty"`
	CustomMessage *string `json:"custom_message,omitempty"`
	FooterText    string  `json:"footer_text"`
}

// Resolve looks up token and assembles the view for the caller.  authed is
// false for both "no credential" and "credential failed to verify".
func Resolve(ctx context.Context, hives RecordSource, owners OwnerSource, token string, callerID int64, authed bool) (*TokenView, error) {
	rec, err := hives.ByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.TokenLookupMissesTotal.Inc()
		}
		return nil, err
	}
	metrics.TokenLookupHitsTotal.Inc()

	view := &TokenView{
		Hive: HiveView{
			SerialNumber: rec.SerialNumber,
			Notes:        rec.Notes,
			IsSold:       rec.Sold(),
			SoldDate:     dateString(rec.SoldDate),
		},
		IsAdmin: authed && callerID == rec.OwnerID,
	}

	ow, err := owners.Get(ctx, rec.OwnerID)
	if err != nil {
		if errors.Is(err, owner.ErrNotFound) {
			// Orphaned record; serve the hive block without business info.
			return view, nil
		}
		return nil, err
	}

	if ow.ShowHiveHistory {
		view.Hive.ImportDate = dateString(&rec.ImportDate)
		view.Hive.SplitDate = dateString(rec.SplitDate)
	}
	if ow.ShowHealthStatus {
		h := string(rec.Health)
		view.Hive.HealthStatus = &h
	}

	biz := &BusinessView{FooterText: ow.FooterText}
	if ow.ShowFarmInfo {
		biz.FarmName = ow.FarmName
		biz.FarmAddress = ow.FarmAddress
	}
	if ow.ShowOwnerContact {
		biz.FarmPhone = ow.FarmPhone
	}
	biz.CustomMessage = ow.CustomMessage
	view.Business = biz

	return view, nil
}

// dateString renders a lifecycle date in the API's wire format.
func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
