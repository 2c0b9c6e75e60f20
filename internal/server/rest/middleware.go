package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/access"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the caller stored by bearerAuth.
func IdentityFromContext(ctx context.Context) (access.Identity, bool) {
	id, ok := ctx.Value(identityKey).(access.Identity)
	return id, ok
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	if header == "" {
		return "", common.ErrTokenMissing
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrInvalidToken
	}

	return strings.TrimSpace(token), nil
}

func (h *handlers) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			respondWithError(w, r, h.logger, err)
			return
		}

		id, err := h.accounts.Authenticate(r.Context(), token)
		if err != nil {
			respondWithError(w, r, h.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, *id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request on l.
func requestLogger(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			l.Info(r.Context(), "request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
