package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/campusauth"
)

// AccessValidator is satisfied by *campusauth.Engine.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (campusauth.Payload, error)
}

type payloadContextKey struct{}

// PayloadFromContext returns the payload stored by RequireAccess.
func PayloadFromContext(ctx context.Context) (campusauth.Payload, bool) {
	p, ok := ctx.Value(payloadContextKey{}).(campusauth.Payload)
	return p, ok
}

// WithPayload stores p in ctx the way RequireAccess does.
func WithPayload(ctx context.Context, p campusauth.Payload) context.Context {
	return context.WithValue(ctx, payloadContextKey{}, p)
}

// RequireAccess rejects requests without a valid bearer access token with 401.
func RequireAccess(validator AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			payload, err := validator.ValidateAccess(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
