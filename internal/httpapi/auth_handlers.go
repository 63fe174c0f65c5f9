package httpapi

import (
	"errors"
	"net/http"
	"strings"

	shadowid "github.com/shadowid/shadowid"
)

type registerRequest struct {
	Seed string `json:"seed"`
}

type registerResponse struct {
	AnonymousIdentifier string `json:"anonymous_identifier"`
	Message             string `json:"message"`
}

type tokenRequest struct {
	AnonymousIdentifier string `json:"anonymous_identifier"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Seed) == "" {
		writeError(w, r, http.StatusBadRequest, "seed is required")
		return
	}

	identity, err := a.engine.Register(r.Context(), req.Seed)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		AnonymousIdentifier: identity.AnonymousIdentifier,
		Message:             "Registration successful",
	})
}

func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.AnonymousIdentifier) == "" {
		writeError(w, r, http.StatusBadRequest, "anonymous_identifier is required")
		return
	}

	pair, err := a.engine.Login(r.Context(), req.AnonymousIdentifier)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.RefreshToken == "" {
		writeError(w, r, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := a.engine.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// writeEngineError maps engine sentinels to generic HTTP responses. Callers
// get a kind, never a cause; the cause is logged server-side.
func (a *API) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shadowid.ErrRateLimited):
		writeError(w, r, http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	case errors.Is(err, shadowid.ErrInvalidCredentials):
		writeError(w, r, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, shadowid.ErrInvalidRefreshToken):
		writeError(w, r, http.StatusBadRequest, "Invalid refresh token")
	case errors.Is(err, shadowid.ErrTokenExpired),
		errors.Is(err, shadowid.ErrTokenInvalid),
		errors.Is(err, shadowid.ErrTokenMalformed):
		writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, shadowid.ErrStoreUnavailable):
		a.logger.Error("backend unavailable", "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusServiceUnavailable, "Service unavailable")
	default:
		a.logger.Error("unhandled engine error", "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
