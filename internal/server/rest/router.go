package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/access"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	apiBasePath   = "/api"
	paramUsername = "username"
	paramToken    = "token"

	requestTimeout = 30 * time.Second
)

// Accounts is the account service as seen by the HTTP layer.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*access.Identity, error)
	ListUsers(ctx context.Context, caller access.Identity) ([]*models.User, error)
	GetProfile(ctx context.Context, caller access.Identity, scope access.Scope, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, caller access.Identity, scope access.Scope, username string, upd services.ProfileUpdate) (*models.User, error)
	DeleteProfile(ctx context.Context, caller access.Identity, scope access.Scope, username string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// NewRouter builds the full HTTP API on top of accounts.
func NewRouter(accounts Accounts, l logging.Logger) http.Handler {
	h := &handlers{accounts: accounts, logger: l}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(l))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Post("/register", h.wrap(h.register))
		r.Post("/login", h.wrap(h.login))
		r.Post("/reset_password_request", h.wrap(h.requestPasswordReset))
		r.Post("/reset_password", h.wrap(h.resetPassword))
		r.Post("/reset_password/{"+paramToken+"}", h.wrap(h.resetPasswordByPath))

		r.Group(func(r chi.Router) {
			r.Use(h.bearerAuth)

			r.Get("/users", h.wrap(h.listUsers))
			profileRoutes(r, h, "/user", access.ScopeSelf)
			profileRoutes(r, h, "/admin/user", access.ScopeAdmin)
		})
	})

	r.Get("/healthz", handleHealthCheck)

	return r
}

func profileRoutes(r chi.Router, h *handlers, base string, scope access.Scope) {
	path := base + "/{" + paramUsername + "}"
	r.Get(path, h.wrap(h.getUser(scope)))
	r.Put(path, h.wrap(h.updateUser(scope)))
	r.Delete(path, h.wrap(h.deleteUser(scope)))
}

func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
