// internal/api/handlers_test.go
//
// Handler tests driving the full chi router over sqlmock.
//
// Run: go test ./internal/api -v

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/apiarylabs/hivetag/internal/auth"
	"github.com/apiarylabs/hivetag/internal/hive"
	"github.com/apiarylabs/hivetag/internal/owner"
	"github.com/apiarylabs/hivetag/internal/qr"
	"github.com/apiarylabs/hivetag/internal/scan"
)

func newTestAPI(t *testing.T) (*API, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { rawDB.Close() })

	db := sqlx.NewDb(rawDB, "sqlmock")
	log := zap.NewNop().Sugar()

	owners := owner.NewRepo(db)
	cache := owner.NewCache(owners, owner.CacheIdleTTL, time.Hour)
	t.Cleanup(cache.Stop)

	scans, err := scan.NewRecorder(db, "", log)
	if err != nil {
		t.Fatalf("scan recorder: %v", err)
	}

	return &API{
		Hives:      hive.NewService(hive.NewRepo(db), "TO", log),
		Owners:     owners,
		OwnerCache: cache,
		Signer:     auth.NewSigner("test-secret", time.Hour),
		Scans:      scans,
		QR:         qr.Builder{Scheme: "https", Host: "farm.example.com"},
		Log:        log,
	}, mock
}

var hiveCols = []string{
	"serial_number", "access_token", "owner_id", "import_date",
	"split_date", "health_status", "notes", "sold_date", "created_at", "updated_at",
}

func hiveRow(serial, token string, ownerID int64, soldDate any) *sqlmock.Rows {
	now := time.Now().UTC()
	imp := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(hiveCols).AddRow(
		serial, token, ownerID, imp, nil, "good", "gentle colony", soldDate, now, now)
}

func ownerRow(id int64, username string) *sqlmock.Rows {
	now := time.Now().UTC()
	farm := "Sunny Apiary"
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash",
		"farm_name", "farm_address", "farm_phone",
		"qr_show_farm_info", "qr_show_owner_contact", "qr_show_hive_history",
		"qr_show_health_status", "qr_custom_message", "qr_footer_text",
		"created_at", "updated_at",
	}).AddRow(
		id, username, username+"@example.com", "$2a$10$invalidhash",
		farm, "1 Meadow Lane", "+36 1 234 5678",
		true, true, true,
		true, nil, "Thanks for scanning!",
		now, now)
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	a, _ := newTestAPI(t)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "healthy") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestPublicHiveAnonymous(t *testing.T) {
	a, mock := newTestAPI(t)

	mock.ExpectQuery("SELECT .+ FROM hive WHERE access_token").
		WithArgs("GoodToken001").
		WillReturnRows(hiveRow("TO001", "GoodToken001", 1, nil))
	mock.ExpectQuery("SELECT .+ FROM owner WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(ownerRow(1, "beekeeper"))
	mock.ExpectExec("INSERT INTO scan_event").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hives/GoodToken001", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var view struct {
		Hive struct {
			SerialNumber string  `json:"serial_number"`
			ImportDate   *string `json:"import_date"`
		} `json:"hive"`
		Business *struct {
			FarmName   *string `json:"farm_name"`
			FooterText string  `json:"footer_text"`
		} `json:"business"`
		IsAdmin bool `json:"is_admin"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.IsAdmin {
		t.Fatal("anonymous scan must not be admin")
	}
	if view.Hive.SerialNumber != "TO001" || view.Hive.ImportDate == nil {
		t.Fatalf("unexpected hive block: %+v", view.Hive)
	}
	if view.Business == nil || view.Business.FarmName == nil {
		t.Fatal("business block missing")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestPublicHiveUnknownToken(t *testing.T) {
	a, mock := newTestAPI(t)

	mock.ExpectQuery("SELECT .+ FROM hive WHERE access_token").
		WithArgs("NoSuchToken0").
		WillReturnRows(sqlmock.NewRows(hiveCols))

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hives/NoSuchToken0", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeErrorBody(t, rr)
	if got.Message != "not found" || got.Type != "not_found_error" {
		t.Fatalf("envelope = %+v, want the uniform not-found body", got)
	}
}

func TestPublicHiveGarbageBearerDegrades(t *testing.T) {
	a, mock := newTestAPI(t)

	mock.ExpectQuery("SELECT .+ FROM hive WHERE access_token").
		WithArgs("GoodToken001").
		WillReturnRows(hiveRow("TO001", "GoodToken001", 1, nil))
	mock.ExpectQuery("SELECT .+ FROM owner WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(ownerRow(1, "beekeeper"))
	mock.ExpectExec("INSERT INTO scan_event").
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodGet, "/hives/GoodToken001", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	// A forged credential must not break the public page.
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if strings.Contains(rr.Body.String(), `"is_admin":true`) {
		t.Fatal("forged credential granted admin")
	}
}

func TestPublicHiveOwnerSeesAdmin(t *testing.T) {
	a, mock := newTestAPI(t)

	mock.ExpectQuery("SELECT .+ FROM hive WHERE access_token").
		WithArgs("GoodToken001").
		WillReturnRows(hiveRow("TO001", "GoodToken001", 7, nil))
	mock.ExpectQuery("SELECT .+ FROM owner WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(ownerRow(7, "beekeeper"))
	mock.ExpectExec("INSERT INTO scan_event").
		WillReturnResult(sqlmock.NewResult(1, 1))

	tok, err := a.Signer.Mint(7)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/hives/GoodToken001", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"is_admin":true`) {
		t.Fatal("owner scan did not carry is_admin")
	}
}

func TestOwnerRoutesRequireAuth(t *testing.T) {
	a, _ := newTestAPI(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/hives"},
		{http.MethodPost, "/api/hives"},
		{http.MethodGet, "/api/stats"},
		{http.MethodPost, "/api/hives/TO001/sell"},
	} {
		rr := httptest.NewRecorder()
		a.Router().ServeHTTP(rr, httptest.NewRequest(route.method, route.path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", route.method, route.path, rr.Code)
		}
	}
}

func TestCreateHiveValidation(t *testing.T) {
	a, _ := newTestAPI(t)
	tok, err := a.Signer.Mint(1)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	body := `{"import_date":"2026-03-01","health_status":"thriving"}`
	req := httptest.NewRequest(http.MethodPost, "/api/hives", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	got := decodeErrorBody(t, rr)
	if got.Type != "validation_error" {
		t.Fatalf("type = %q", got.Type)
	}
}

func TestCreateHiveFlow(t *testing.T) {
	a, mock := newTestAPI(t)
	tok, err := a.Signer.Mint(1)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	mock.ExpectQuery("SELECT serial_number FROM hive").
		WithArgs("TO%").
		WillReturnRows(sqlmock.NewRows([]string{"serial_number"}))
	mock.ExpectQuery("SELECT 1 FROM hive WHERE access_token").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO hive").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"import_date":"2026-03-01","health_status":"good","notes":"first hive"}`
	req := httptest.NewRequest(http.MethodPost, "/api/hives", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SerialNumber string `json:"serial_number"`
		AccessToken  string `json:"access_token"`
		IsSold       bool   `json:"is_sold"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SerialNumber != "TO001" {
		t.Fatalf("serial = %q, want TO001 on an empty inventory", resp.SerialNumber)
	}
	if len(resp.AccessToken) != 12 {
		t.Fatalf("token length = %d, want 12", len(resp.AccessToken))
	}
	if resp.IsSold {
		t.Fatal("fresh hive must be active")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSellHiveFlow(t *testing.T) {
	a, mock := newTestAPI(t)
	tok, err := a.Signer.Mint(1)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	mock.ExpectQuery("SELECT .+ FROM hive WHERE serial_number").
		WithArgs("TO001").
		WillReturnRows(hiveRow("TO001", "GoodToken001", 1, nil))
	mock.ExpectExec("UPDATE hive SET sold_date").
		WithArgs(sqlmock.AnyArg(), "TO001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/hives/TO001/sell", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		IsSold   bool    `json:"is_sold"`
		SoldDate *string `json:"sold_date"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.IsSold || resp.SoldDate == nil {
		t.Fatalf("response = %+v, want sold with date", resp)
	}
}

func TestSellForeignHiveForbidden(t *testing.T) {
	a, mock := newTestAPI(t)
	tok, err := a.Signer.Mint(1)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	mock.ExpectQuery("SELECT .+ FROM hive WHERE serial_number").
		WithArgs("TO001").
		WillReturnRows(hiveRow("TO001", "GoodToken001", 2, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/hives/TO001/sell", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestUnsellActiveConflict(t *testing.T) {
	a, mock := newTestAPI(t)
	tok, err := a.Signer.Mint(1)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	mock.ExpectQuery("SELECT .+ FROM hive WHERE serial_number").
		WithArgs("TO001").
		WillReturnRows(hiveRow("TO001", "GoodToken001", 1, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/hives/TO001/unsell", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func TestHiveQRContentType(t *testing.T) {
	a, mock := newTestAPI(t)
	tok, err := a.Signer.Mint(1)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	mock.ExpectQuery("SELECT .+ FROM hive WHERE serial_number").
		WithArgs("TO001").
		WillReturnRows(hiveRow("TO001", "GoodToken001", 1, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/hives/TO001/qr", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "\x89PNG") {
		t.Fatal("body is not a PNG")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	a, mock := newTestAPI(t)

	mock.ExpectQuery("SELECT .+ FROM owner WHERE username").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body := `{"username":"ghost","password":"whatever1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	got := decodeErrorBody(t, rr)
	if got.Message != "invalid credentials" {
		t.Fatalf("message = %q; unknown user must read like a bad password", got.Message)
	}
}

func TestSetupCheck(t *testing.T) {
	a, mock := newTestAPI(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/setup/check", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"setup_needed":true`) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestSetupRefusedAfterFirstAccount(t *testing.T) {
	a, mock := newTestAPI(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	body := `{"username":"second","email":"second@example.com","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/setup", strings.NewReader(body))
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}
