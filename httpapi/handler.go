package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/campusauth"
	"github.com/MrEthical07/campusauth/middleware"
)

// Auth is the part of *campusauth.Engine the handlers use.
type Auth interface {
	Register(ctx context.Context, in campusauth.RegisterInput, avatar *campusauth.Avatar) (campusauth.AuthResult, error)
	Login(ctx context.Context, email, password string) (campusauth.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (campusauth.AuthResult, error)
	Logout(ctx context.Context) error
	ValidateAccess(ctx context.Context, accessToken string) (campusauth.Payload, error)
	RefreshCookieName() string
	ClearRefreshCookie() campusauth.CookieDirective
}

var _ Auth = (*campusauth.Engine)(nil)

const (
	// DefaultMaxAvatarBytes bounds multipart registration uploads.
	DefaultMaxAvatarBytes = 5 << 20
	maxJSONBytes          = 64 << 10
)

// Options tunes the HTTP layer.
type Options struct {
	Logger         *slog.Logger
	MaxAvatarBytes int64
	// TrustProxy makes the client IP come from X-Forwarded-For.
	TrustProxy bool
}

// Handler serves the auth routes.
type Handler struct {
	auth           Auth
	logger         *slog.Logger
	maxAvatarBytes int64
	trustProxy     bool
}

func New(auth Auth, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAvatar := opts.MaxAvatarBytes
	if maxAvatar <= 0 {
		maxAvatar = DefaultMaxAvatarBytes
	}
	return &Handler{
		auth:           auth,
		logger:         logger.With(slog.String("component", "httpapi")),
		maxAvatarBytes: maxAvatar,
		trustProxy:     opts.TrustProxy,
	}
}

// Routes returns the auth routes mounted on a fresh ServeMux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.Mount(mux)
	return middleware.ClientInfo(h.trustProxy)(mux)
}

// Mount registers the auth routes on mux. Callers mounting on their own mux
// should wrap it with middleware.ClientInfo.
func (h *Handler) Mount(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/refresh", h.refresh)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.Handle("GET /auth/me", middleware.RequireAccess(h.auth)(http.HandlerFunc(h.me)))
}
