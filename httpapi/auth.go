package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/MrEthical07/campusauth"
	"github.com/MrEthical07/campusauth/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	in, avatar, cleanup, err := h.decodeRegistration(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in, avatar)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeTokens(w, http.StatusCreated, res)
}

func (h *Handler) decodeRegistration(w http.ResponseWriter, r *http.Request) (campusauth.RegisterInput, *campusauth.Avatar, func(), error) {
	var in campusauth.RegisterInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(w, r, &in); err != nil {
			return in, nil, nil, err
		}
		return in, nil, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+maxJSONBytes)
	if err := r.ParseMultipartForm(h.maxAvatarBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, nil, nil, errAvatarTooLarge
		}
		return in, nil, nil, errMalformedBody
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	in = campusauth.RegisterInput{
		FirstName:     r.FormValue("firstName"),
		LastName:      r.FormValue("lastName"),
		Email:         r.FormValue("email"),
		Password:      r.FormValue("password"),
		FatherInitial: r.FormValue("fatherInitial"),
	}

	file, header, err := r.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, cleanup, nil
	}
	if err != nil {
		return in, nil, cleanup, errMalformedBody
	}
	if header.Size > h.maxAvatarBytes {
		_ = file.Close()
		return in, nil, cleanup, errAvatarTooLarge
	}

	avatar := &campusauth.Avatar{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
	return in, avatar, func() {
		_ = file.Close()
		cleanup()
	}, nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeTokens(w, http.StatusOK, res)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(h.auth.RefreshCookieName()); err == nil {
		token = cookie.Value
	}

	res, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		if campusauth.IsTokenError(err) {
			http.SetCookie(w, h.auth.ClearRefreshCookie().HTTPCookie())
		}
		h.writeError(w, r, err)
		return
	}
	h.writeTokens(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	err := h.auth.Logout(r.Context())
	http.SetCookie(w, h.auth.ClearRefreshCookie().HTTPCookie())
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeError(w, r, err)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	payload, ok := middleware.PayloadFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) writeTokens(w http.ResponseWriter, status int, res campusauth.AuthResult) {
	if cookie := res.RefreshCookie(); !cookie.IsZero() {
		http.SetCookie(w, cookie.HTTPCookie())
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, tokenResponse{AccessToken: res.AccessToken})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "" && !strings.EqualFold(mediaType, "application/json") {
		return errUnsupportedMedia
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errMalformedBody
	}
	return nil
}
