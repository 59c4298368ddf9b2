// internal/api/dto.go
//
// Request/response shapes.
//
// Context
// -------
// Requests are validated structurally with go-playground/validator before
// any domain logic runs; domain rules (split after import, closed health
// enum) are re-checked in internal/hive so the service stays safe without
// this layer.  Wire conventions follow the existing frontend: hive payloads
// use snake_case, owner/profile payloads use camelCase.
package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/apiarylabs/hivetag/internal/hive"
	"github.com/apiarylabs/hivetag/internal/owner"
	"github.com/apiarylabs/hivetag/internal/scan"
)

var validate = validator.New()

const dateFormat = "2006-01-02"

/*────────────────────────────── requests ──────────────────────────────────*/

type createHiveRequest struct {
	ImportDate   string `json:"import_date"   validate:"required,datetime=2006-01-02"`
	SplitDate    string `json:"split_date"    validate:"omitempty,datetime=2006-01-02"`
	HealthStatus string `json:"health_status" validate:"required,oneof=good average weak"`
	Notes        string `json:"notes"         validate:"max=2000"`
}

type updateHiveRequest struct {
	ImportDate   *string `json:"import_date"   validate:"omitempty,datetime=2006-01-02"`
	SplitDate    *string `json:"split_date"    validate:"omitempty,datetime=2006-01-02"`
	HealthStatus *string `json:"health_status" validate:"omitempty,oneof=good average weak"`
	Notes        *string `json:"notes"         validate:"omitempty,max=2000"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=80"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

type setupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email"    validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type displaySettingsRequest struct {
	ShowFarmInfo     *bool   `json:"showFarmInfo"`
	ShowOwnerContact *bool   `json:"showOwnerContact"`
	ShowHiveHistory  *bool   `json:"showHiveHistory"`
	ShowHealthStatus *bool   `json:"showHealthStatus"`
	CustomMessage    *string `json:"customMessage" validate:"omitempty,max=2000"`
	FooterText       *string `json:"footerText"    validate:"omitempty,max=500"`
}

type updateProfileRequest struct {
	Username    *string                 `json:"username"    validate:"omitempty,min=3,max=80"`
	Email       *string                 `json:"email"       validate:"omitempty,email,max=120"`
	Password    *string                 `json:"password"    validate:"omitempty,min=6,max=128"`
	FarmName    *string                 `json:"farmName"    validate:"omitempty,max=200"`
	FarmAddress *string                 `json:"farmAddress" validate:"omitempty,max=2000"`
	FarmPhone   *string                 `json:"farmPhone"   validate:"omitempty,max=20"`
	QRSettings  *displaySettingsRequest `json:"qrDisplaySettings"`
}

/*────────────────────────────── responses ─────────────────────────────────*/

type hiveResponse struct {
	SerialNumber string  `json:"serial_number"`
	AccessToken  string  `json:"access_token"`
	ImportDate   string  `json:"import_date"`
	SplitDate    *string `json:"split_date"`
	HealthStatus string  `json:"health_status"`
	Notes        string  `json:"notes"`
	IsSold       bool    `json:"is_sold"`
	SoldDate     *string `json:"sold_date"`
	OwnerID      int64   `json:"owner_id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toHiveResponse(rec *hive.Record) hiveResponse {
	return hiveResponse{
		SerialNumber: rec.SerialNumber,
		AccessToken:  rec.AccessToken,
		ImportDate:   rec.ImportDate.Format(dateFormat),
		SplitDate:    optDate(rec.SplitDate),
		HealthStatus: string(rec.Health),
		Notes:        rec.Notes,
		IsSold:       rec.Sold(),
		SoldDate:     optDate(rec.SoldDate),
		OwnerID:      rec.OwnerID,
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    rec.UpdatedAt.Format(time.RFC3339),
	}
}

type displaySettingsResponse struct {
	ShowFarmInfo     bool    `json:"showFarmInfo"`
	ShowOwnerContact bool    `json:"showOwnerContact"`
	ShowHiveHistory  bool    `json:"showHiveHistory"`
	ShowHealthStatus bool    `json:"showHealthStatus"`
	CustomMessage    *string `json:"customMessage"`
	FooterText       string  `json:"footerText"`
}

type ownerResponse struct {
	ID          int64                   `json:"id"`
	Username    string                  `json:"username"`
	Email       string                  `json:"email"`
	FarmName    *string                 `json:"farmName"`
	FarmAddress *string                 `json:"farmAddress"`
	FarmPhone   *string                 `json:"farmPhone"`
	QRSettings  displaySettingsResponse `json:"qrDisplaySettings"`
	CreatedAt   string                  `json:"createdAt"`
}

func toOwnerResponse(rec *owner.Record) ownerResponse {
	return ownerResponse{
		ID:          rec.ID,
		Username:    rec.Username,
		Email:       rec.Email,
		FarmName:    rec.FarmName,
		FarmAddress: rec.FarmAddress,
		FarmPhone:   rec.FarmPhone,
		QRSettings: displaySettingsResponse{
			ShowFarmInfo:     rec.ShowFarmInfo,
			ShowOwnerContact: rec.ShowOwnerContact,
			ShowHiveHistory:  rec.ShowHiveHistory,
			ShowHealthStatus: rec.ShowHealthStatus,
			CustomMessage:    rec.CustomMessage,
			FooterText:       rec.FooterText,
		},
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
}

type paginationResponse struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

func toPagination(page, perPage, total int) paginationResponse {
	pages := (total + perPage - 1) / perPage
	return paginationResponse{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}

type scanEventResponse struct {
	ScannedAt  string `json:"scanned_at"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	Device     string `json:"device"`
	IsBot      bool   `json:"is_bot"`
	CountryISO string `json:"country_iso"`
	City       string `json:"city"`
}

func toScanResponses(events []scan.Event) []scanEventResponse {
	out := make([]scanEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, scanEventResponse{
			ScannedAt:  ev.ScannedAt.Format(time.RFC3339),
			Browser:    ev.Browser,
			OS:         ev.OS,
			Device:     ev.Device,
			IsBot:      ev.IsBot,
			CountryISO: ev.CountryISO,
			City:       ev.City,
		})
	}
	return out
}

/*────────────────────────────── helpers ───────────────────────────────────*/

func optDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateFormat)
	return &s
}

// parseDate is only called after validator has accepted the format.
func parseDate(s string) time.Time {
	t, _ := time.Parse(dateFormat, s)
	return t
}
