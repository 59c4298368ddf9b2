// internal/api/handlers_hive.go
//
// Owner-scoped hive handlers: CRUD, listings, stats, sale transitions, the
// QR artifact, and scan history.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apiarylabs/hivetag/internal/auth"
	"github.com/apiarylabs/hivetag/internal/hive"
	"github.com/apiarylabs/hivetag/internal/qr"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parseListQuery maps the query string onto repository options.  Unknown
// sort fields fall back to created_at inside the repository; bad dates are
// ignored rather than rejected, matching the tolerant listing behaviour the
// frontend expects.
func parseListQuery(r *http.Request, sold bool) hive.ListOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	sortField := q.Get("sort_field")
	if sortField == "" {
		if sold {
			sortField = "sold_date"
		} else {
			sortField = "created_at"
		}
	}

	opts := hive.ListOptions{
		Sold:      sold,
		Serial:    q.Get("serialNumber"),
		SortField: sortField,
		SortDesc:  q.Get("sort_order") != "asc",
		Page:      page,
		PerPage:   perPage,
	}
	opts.ImportDate = queryDate(q.Get("import_date"))
	if sold {
		opts.SoldDate = queryDate(q.Get("sold_date"))
	} else {
		opts.SplitDate = queryDate(q.Get("split_date"))
	}
	return opts
}

func queryDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil
	}
	return &t
}

// listActive returns one page of the active inventory plus health stats.
func (a *API) listActive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	opts := parseListQuery(r, false)

	recs, total, err := a.Hives.List(r.Context(), id, opts)
	if err != nil {
		respondErr(w, err)
		return
	}
	counts, err := a.Hives.HealthCounts(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}

	hives := make([]hiveResponse, 0, len(recs))
	for i := range recs {
		hives = append(hives, toHiveResponse(&recs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hives":        hives,
		"pagination":   toPagination(opts.Page, opts.PerPage, total),
		"health_stats": counts,
	})
}

// listSold returns one page of the sold inventory.
func (a *API) listSold(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	opts := parseListQuery(r, true)

	recs, total, err := a.Hives.List(r.Context(), id, opts)
	if err != nil {
		respondErr(w, err)
		return
	}

	hives := make([]hiveResponse, 0, len(recs))
	for i := range recs {
		hives = append(hives, toHiveResponse(&recs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hives":      hives,
		"pagination": toPagination(opts.Page, opts.PerPage, total),
	})
}

// stats returns the dashboard counters.
func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	s, err := a.Hives.StatsFor(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"total":   s.Total,
		"active":  s.Active,
		"sold":    s.Sold,
		"healthy": s.Healthy,
	})
}

// createHive registers a hive: the server allocates the serial and token,
// the caller supplies only lifecycle fields.
func (a *API) createHive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())

	var req createHiveRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	in := hive.CreateInput{
		ImportDate: parseDate(req.ImportDate),
		Health:     hive.HealthStatus(req.HealthStatus),
		Notes:      req.Notes,
	}
	if req.SplitDate != "" {
		d := parseDate(req.SplitDate)
		in.SplitDate = &d
	}

	rec, err := a.Hives.Create(r.Context(), id, in)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHiveResponse(rec))
}

// getHive returns one of the caller's hives by serial.
func (a *API) getHive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	rec, err := a.Hives.Get(r.Context(), id, chi.URLParam(r, "serial"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHiveResponse(rec))
}

// updateHive applies a partial update.
func (a *API) updateHive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())

	var req updateHiveRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	var in hive.UpdateInput
	if req.ImportDate != nil {
		d := parseDate(*req.ImportDate)
		in.ImportDate = &d
	}
	if req.SplitDate != nil {
		if *req.SplitDate == "" {
			in.ClearSplitDate = true
		} else {
			d := parseDate(*req.SplitDate)
			in.SplitDate = &d
		}
	}
	if req.HealthStatus != nil {
		h := hive.HealthStatus(*req.HealthStatus)
		in.Health = &h
	}
	in.Notes = req.Notes

	rec, err := a.Hives.Update(r.Context(), id, chi.URLParam(r, "serial"), in)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHiveResponse(rec))
}

// deleteHive removes a record outright.
func (a *API) deleteHive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	if err := a.Hives.Delete(r.Context(), id, chi.URLParam(r, "serial")); err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "hive deleted"})
}

// sellHive marks the hive sold as of today.
func (a *API) sellHive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	rec, err := a.Hives.Sell(r.Context(), id, chi.URLParam(r, "serial"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHiveResponse(rec))
}

// unsellHive returns the hive to the active inventory.
func (a *API) unsellHive(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	rec, err := a.Hives.Unsell(r.Context(), id, chi.URLParam(r, "serial"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHiveResponse(rec))
}

// hiveQR streams the PNG label for one of the caller's hives.  The encoded
// URL carries only the access token, never the serial.
func (a *API) hiveQR(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	rec, err := a.Hives.Get(r.Context(), id, chi.URLParam(r, "serial"))
	if err != nil {
		respondErr(w, err)
		return
	}

	png, err := a.QR.PNG(rec.AccessToken, qr.DefaultSize)
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}

// hiveScans lists recent QR scan events for one of the caller's hives.
func (a *API) hiveScans(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	rec, err := a.Hives.Get(r.Context(), id, chi.URLParam(r, "serial"))
	if err != nil {
		respondErr(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := a.Scans.BySerial(r.Context(), rec.SerialNumber, limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": toScanResponses(events)})
}
