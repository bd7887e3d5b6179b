package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/campusauth"
)

var (
	errMalformedBody    = errors.New("malformed request body")
	errUnsupportedMedia = errors.New("unsupported media type")
	errAvatarTooLarge   = &campusauth.FieldError{Field: "avatar", Message: "Avatar is too large", Err: campusauth.ErrInvalidInput}
)

type errorBody struct {
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fe, ok := campusauth.AsFieldError(err); ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Errors: map[string]string{fe.Field: fe.Message}})
		return
	}

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, "malformed request body"
	case errors.Is(err, errUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "unsupported media type"
	case errors.Is(err, campusauth.ErrRefreshReuse):
		return http.StatusUnauthorized, "refresh token reuse detected"
	case errors.Is(err, campusauth.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case campusauth.IsTokenError(err):
		return http.StatusUnauthorized, "unauthorized"
	case campusauth.IsRateLimited(err):
		return http.StatusTooManyRequests, "too many requests"
	case errors.Is(err, campusauth.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
