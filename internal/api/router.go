// internal/api/router.go
//
// Route table and handler dependencies.
//
// Request life-cycle
// ------------------
//
//  1. chi middleware     – real IP, panic recovery, security headers.
//  2. Route groups:
//     • public   – health, /hives/{token} (MaybeOwner), /metrics.
//     • /api     – RequireOwner bearer gate, then the owner-scoped CRUD,
//       stats, QR, scan, and profile handlers.
//  3. Handlers decode + validate DTOs, call the domain services, and feed
//     every failure through the single respondErr mapping.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/apiarylabs/hivetag/internal/auth"
	"github.com/apiarylabs/hivetag/internal/hive"
	"github.com/apiarylabs/hivetag/internal/middleware"
	"github.com/apiarylabs/hivetag/internal/owner"
	"github.com/apiarylabs/hivetag/internal/qr"
	"github.com/apiarylabs/hivetag/internal/scan"
)

// API bundles the collaborators every handler may need.
type API struct {
	Hives      *hive.Service
	Owners     *owner.Repo
	OwnerCache *owner.Cache
	Signer     *auth.Signer
	Scans      *scan.Recorder
	QR         qr.Builder
	HSTS       bool
	Log        *zap.SugaredLogger
}

// Router builds the full chi handler tree.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security(a.HSTS))

	r.Get("/", a.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public QR page: authenticate if possible, continue as anonymous
	// otherwise.  This route must never 401.
	r.With(auth.MaybeOwner(a.Signer)).Get("/hives/{token}", a.publicHive)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", a.login)
		r.Get("/auth/setup/check", a.setupCheck)
		r.Post("/auth/setup", a.setup)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireOwner(a.Signer))

			r.Post("/auth/logout", a.logout)
			r.Get("/auth/me", a.me)
			r.Put("/auth/profile", a.updateProfile)

			r.Get("/hives", a.listActive)
			r.Post("/hives", a.createHive)
			r.Get("/sold-hives", a.listSold)
			r.Get("/stats", a.stats)

			r.Get("/hives/{serial}", a.getHive)
			r.Put("/hives/{serial}", a.updateHive)
			r.Delete("/hives/{serial}", a.deleteHive)
			r.Post("/hives/{serial}/sell", a.sellHive)
			r.Post("/hives/{serial}/unsell", a.unsellHive)
			r.Get("/hives/{serial}/qr", a.hiveQR)
			r.Get("/hives/{serial}/scans", a.hiveScans)
		})
	})

	return r
}

// health is the load-balancer probe.
func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "hivetag",
	})
}

// decodeBody unmarshals and structurally validates a request body.  The
// first validator failure is surfaced as a field-level ValidationError so
// respondErr renders it like any domain rejection.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &hive.ValidationError{Field: "body", Message: "malformed JSON"}
	}
	if err := validate.Struct(dst); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			return &hive.ValidationError{
				Field:   strings.ToLower(ves[0].Field()),
				Message: "failed " + ves[0].Tag() + " validation",
			}
		}
		return err
	}
	return nil
}
