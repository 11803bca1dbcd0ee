package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"internhunt-engine/internal/auth"
	"internhunt-engine/internal/config"
	"internhunt-engine/internal/fetch"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/store"
)

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	Hint      string `json:"hint,omitempty"`
	StoreCode string `json:"store_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type APIError struct {
	Error ErrorBody `json:"error"`
}

const permissionHint = "Set storage.admin_dsn in config.yml or INTERNHUNT_ADMIN_DSN to a role that may write the jobs table."

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeErrorBody(w, r, status, ErrorBody{Code: code, Message: message})
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	body.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, APIError{Error: body})
}

// writeSyncError maps a failed sync onto the error envelope.
func writeSyncError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		credErr    *config.CredentialsError
		statusErr  *fetch.StatusError
		tooSoonErr *scrape.TooSoonError
		storeErr   *store.Error
	)
	switch {
	case errors.As(err, &credErr):
		writeErrorBody(w, r, http.StatusInternalServerError, ErrorBody{
			Code:    "config_error",
			Message: credErr.Error(),
			Detail:  credErr.Detail,
		})
	case errors.Is(err, scrape.ErrSyncInProgress):
		WriteError(w, r, http.StatusConflict, "sync_in_progress", "A sync is already in progress. Try again shortly.")
	case errors.As(err, &tooSoonErr):
		w.Header().Set("Retry-After", strconv.Itoa(int(tooSoonErr.RetryAfter.Seconds())+1))
		WriteError(w, r, http.StatusTooManyRequests, "sync_too_soon", tooSoonErr.Error())
	case errors.As(err, &statusErr):
		WriteError(w, r, http.StatusBadGateway, "upstream_error", statusErr.Error())
	case store.IsPermissionDenied(err):
		body := ErrorBody{
			Code:    "permission_denied",
			Message: "Permission denied: elevated storage credentials are required",
			Hint:    permissionHint,
		}
		if errors.As(err, &storeErr) {
			body.Detail = storeErr.Message
			body.StoreCode = storeErr.Code
		}
		writeErrorBody(w, r, http.StatusInternalServerError, body)
	case errors.As(err, &storeErr):
		prefix := "Failed to sync jobs to database: "
		if storeErr.Op == "deactivate jobs" {
			prefix = "Database error: "
		}
		writeErrorBody(w, r, http.StatusInternalServerError, ErrorBody{
			Code:      "storage_error",
			Message:   prefix + storeErr.Message,
			Detail:    storeErr.Detail,
			Hint:      storeErr.Hint,
			StoreCode: storeErr.Code,
		})
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to sync jobs: "+err.Error())
	}
}

// writeStoreError reports a failed read or write outside the sync path.
func writeStoreError(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		writeErrorBody(w, r, http.StatusInternalServerError, ErrorBody{
			Code:      "storage_error",
			Message:   prefix + storeErr.Message,
			Detail:    storeErr.Detail,
			Hint:      storeErr.Hint,
			StoreCode: storeErr.Code,
		})
		return
	}
	WriteError(w, r, http.StatusInternalServerError, "internal_error", prefix+err.Error())
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, auth.ErrAlreadyRegistered):
		status, code = http.StatusConflict, "already_registered"
	case errors.Is(err, auth.ErrWeakPassword):
		status, code = http.StatusBadRequest, "weak_password"
	case errors.Is(err, auth.ErrInvalidEmail):
		status, code = http.StatusBadRequest, "invalid_email"
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auth.ErrNoSession):
		status, code = http.StatusUnauthorized, "unauthorized"
	}
	WriteError(w, r, status, code, auth.Message(err))
}
