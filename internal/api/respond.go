// internal/api/respond.go
//
// JSON envelope and domain-error translation.
//
// Context
// -------
// Handlers return domain errors; this file owns the single mapping from
// those to HTTP statuses.  The error envelope matches what the frontend
// already consumes: {"error": true, "message": …, "status_code": …,
// "type": …} plus an optional "field" for validation failures.
//
// The not-found branch is deliberately information-free: every path that
// ends in hive.ErrNotFound or owner.ErrNotFound produces the same generic
// body, so the public endpoint cannot be used to probe which tokens exist
// or which ones are merely malformed.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/apiarylabs/hivetag/internal/hive"
	"github.com/apiarylabs/hivetag/internal/owner"
)

// errInvalidCredentials is raised by login; kept apart from the domain
// sentinels because it is purely an API concern.
var errInvalidCredentials = errors.New("invalid credentials")

type errorBody struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Type       string `json:"type,omitempty"`
	Field      string `json:"field,omitempty"`
}

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

// writeError renders the error envelope.
func writeError(w http.ResponseWriter, status int, msg, typ, field string) {
	writeJSON(w, status, errorBody{
		Error:      true,
		Message:    msg,
		StatusCode: status,
		Type:       typ,
		Field:      field,
	})
}

// respondErr maps a domain error onto the wire.  Unrecognised errors become
// an opaque 500; the detail goes to the log, not the client.
func respondErr(w http.ResponseWriter, err error) {
	var ve *hive.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message, "validation_error", ve.Field)

	case errors.Is(err, hive.ErrNotFound), errors.Is(err, owner.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "not_found_error", "")

	case errors.Is(err, hive.ErrNotOwner):
		writeError(w, http.StatusForbidden, "access denied", "authorization_error", "")

	case errors.Is(err, hive.ErrAlreadySold):
		writeError(w, http.StatusConflict, "hive already sold", "conflict_error", "")

	case errors.Is(err, hive.ErrNotSold):
		writeError(w, http.StatusConflict, "hive is not sold", "conflict_error", "")

	case errors.Is(err, hive.ErrAllocationContention):
		writeError(w, http.StatusServiceUnavailable,
			"identifier allocation contention, retry", "allocation_error", "")

	case errors.Is(err, owner.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken", "conflict_error", "username")

	case errors.Is(err, owner.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already taken", "conflict_error", "email")

	case errors.Is(err, errInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials", "authentication_error", "")

	default:
		zap.S().Errorw("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error", "internal_error", "")
	}
}
