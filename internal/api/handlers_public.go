// internal/api/handlers_public.go
//
// The public token endpoint.  This is what a QR scan lands on: no session is
// required, and a bad or stale credential degrades the caller to an anonymous
// visitor instead of producing an error.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apiarylabs/hivetag/internal/auth"
	"github.com/apiarylabs/hivetag/internal/hive"
)

// publicHive resolves an access token into the visibility-filtered view.
// The owning account sees the full record; everyone else sees only what the
// owner's display settings allow.  Each successful resolution is recorded as
// a scan event.
func (a *API) publicHive(w http.ResponseWriter, r *http.Request) {
	callerID, authed := auth.OwnerID(r.Context())

	view, err := hive.Resolve(r.Context(), a.Hives.Repo(), a.OwnerCache,
		chi.URLParam(r, "token"), callerID, authed)
	if err != nil {
		respondErr(w, err)
		return
	}

	a.Scans.Record(r.Context(), view.Hive.SerialNumber, r)
	writeJSON(w, http.StatusOK, view)
}
