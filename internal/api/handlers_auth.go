// internal/api/handlers_auth.go
//
// Account handlers: login, session info, first-run setup, and profile
// (including the QR display settings consumed by the public resolver).
package api

import (
	"net/http"

	"github.com/apiarylabs/hivetag/internal/auth"
	"github.com/apiarylabs/hivetag/internal/owner"
)

// defaultFooter seeds new accounts; owners change it on the profile page.
const defaultFooter = "Thank you for trusting our products"

// login verifies credentials and mints a bearer token.  Unknown username
// and wrong password are indistinguishable on the wire.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	rec, err := a.Owners.ByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(rec.PasswordHash, req.Password) {
		a.Log.Warnw("failed login", "username", req.Username)
		respondErr(w, errInvalidCredentials)
		return
	}

	token, err := a.Signer.Mint(rec.ID)
	if err != nil {
		respondErr(w, err)
		return
	}

	a.Log.Infow("owner logged in", "owner", rec.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toOwnerResponse(rec),
	})
}

// logout is client-side token discard; the endpoint exists so the frontend
// has something to call and the event lands in the log.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.OwnerID(r.Context()); ok {
		a.Log.Infow("owner logged out", "owner", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// me returns the authenticated owner's profile.
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())
	rec, err := a.Owners.ByID(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOwnerResponse(rec))
}

// setupCheck reports whether first-run setup is still pending.
func (a *API) setupCheck(w http.ResponseWriter, r *http.Request) {
	n, err := a.Owners.Count(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"setup_needed": n == 0})
}

// setup creates the first account.  Refused once any account exists; later
// accounts are provisioned by an operator, not an open endpoint.
func (a *API) setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	n, err := a.Owners.Count(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	if n > 0 {
		writeError(w, http.StatusForbidden, "setup already completed", "authorization_error", "")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	rec := &owner.Record{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	rec.FooterText = defaultFooter
	id, err := a.Owners.Insert(r.Context(), rec)
	if err != nil {
		respondErr(w, err)
		return
	}

	token, err := a.Signer.Mint(id)
	if err != nil {
		respondErr(w, err)
		return
	}

	created, err := a.Owners.ByID(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}

	a.Log.Infow("initial account created", "owner", id, "username", req.Username)
	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  toOwnerResponse(created),
	})
}

// updateProfile applies a partial profile update, re-hashing the password
// and pre-checking username/email uniqueness so the offending field can be
// named.  The settings cache entry is dropped so the public page reflects
// new display flags immediately.
func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.OwnerID(r.Context())

	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	rec, err := a.Owners.ByID(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}

	if req.Username != nil && *req.Username != rec.Username {
		taken, err := a.Owners.UsernameTaken(r.Context(), *req.Username, id)
		if err != nil {
			respondErr(w, err)
			return
		}
		if taken {
			respondErr(w, owner.ErrUsernameTaken)
			return
		}
		rec.Username = *req.Username
	}
	if req.Email != nil && *req.Email != rec.Email {
		taken, err := a.Owners.EmailTaken(r.Context(), *req.Email, id)
		if err != nil {
			respondErr(w, err)
			return
		}
		if taken {
			respondErr(w, owner.ErrEmailTaken)
			return
		}
		rec.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			respondErr(w, err)
			return
		}
		rec.PasswordHash = hash
	}
	if req.FarmName != nil {
		rec.FarmName = req.FarmName
	}
	if req.FarmAddress != nil {
		rec.FarmAddress = req.FarmAddress
	}
	if req.FarmPhone != nil {
		rec.FarmPhone = req.FarmPhone
	}
	if qs := req.QRSettings; qs != nil {
		if qs.ShowFarmInfo != nil {
			rec.ShowFarmInfo = *qs.ShowFarmInfo
		}
		if qs.ShowOwnerContact != nil {
			rec.ShowOwnerContact = *qs.ShowOwnerContact
		}
		if qs.ShowHiveHistory != nil {
			rec.ShowHiveHistory = *qs.ShowHiveHistory
		}
		if qs.ShowHealthStatus != nil {
			rec.ShowHealthStatus = *qs.ShowHealthStatus
		}
		if qs.CustomMessage != nil {
			rec.CustomMessage = qs.CustomMessage
		}
		if qs.FooterText != nil {
			rec.FooterText = *qs.FooterText
		}
	}

	if err := a.Owners.Update(r.Context(), rec); err != nil {
		respondErr(w, err)
		return
	}
	a.OwnerCache.Invalidate(id)

	a.Log.Infow("profile updated", "owner", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "profile updated",
		"user":    toOwnerResponse(rec),
	})
}
