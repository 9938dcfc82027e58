package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/horlapookie/supportsite/internal/auth"
	"github.com/horlapookie/supportsite/internal/telemetry/tracing"
	"github.com/horlapookie/supportsite/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const bearerSchemePrefix = "Bearer "

// AuthMiddlewareHandler guards privileged write requests: they pass only
// with a valid admin bearer token. Reads and the listed public write paths
// go through untouched.
type AuthMiddlewareHandler struct {
	tokenChecker         auth.Checker
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(tokenChecker auth.Checker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		tokenChecker: tokenChecker,
		allowedPaths: map[string]bool{
			// misc handler:
			"/":        true,
			"/version": true,

			// public writes:
			"/admin/verify": true,
			"/articles":     true,
			"/forum/posts":  true,
			"/complaints":   true,
		},
		allowedPathsPrefixes: []string{
			"/articles/",    // view counting
			"/forum/posts/", // replies
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PATCH, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			// all reads are public, content browsing needs no login
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerSchemePrefix) {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, "no token provided", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			token := strings.TrimPrefix(authHeader, bearerSchemePrefix)
			if err := h.tokenChecker.CheckToken(token); err != nil {
				switch {
				case errors.Is(err, auth.ErrSecretNotConfigured):
					log.Errorf("[auth middleware] %s: %s", r.URL.Path, err)
					pkg.WriteJSONError(w, "server configuration error", http.StatusInternalServerError)
					span.SetStatus(codes.Error, "secret-not-configured")
					span.RecordError(err)
				case errors.Is(err, auth.ErrNoToken):
					log.Tracef("[empty token] [auth middleware] unauthorized => %s", r.URL.Path)
					pkg.WriteJSONError(w, "no token provided", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "missing-auth-token")
				default:
					// expired and forged tokens get the same answer
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
					pkg.WriteJSONError(w, "token validation failed", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "invalid-token")
				}
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
