package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cradoe/kycflow/internal/context"
	"github.com/cradoe/kycflow/internal/errHandler"
	"github.com/cradoe/kycflow/internal/repository"
	"github.com/cradoe/kycflow/internal/response"
	"github.com/cradoe/kycflow/internal/token"

	"github.com/tomasen/realip"
)

type Middleware struct {
	errHandler *errHandler.ErrorHandler
	logger     *slog.Logger
	userRepo   repository.UserRepository
	gate       *token.Gate
}

func New(errHandler *errHandler.ErrorHandler, logger *slog.Logger, userRepo repository.UserRepository, gate *token.Gate) *Middleware {
	return &Middleware{
		errHandler: errHandler,
		logger:     logger,
		userRepo:   userRepo,
		gate:       gate,
	}
}

func (mid *Middleware) RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				mid.errHandler.ServerError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) LogAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		mid.logger.Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

// Authenticate resolves a bearer token into the authenticated user. Each
// rejection cause (expired, malformed, bad signature) is surfaced with its
// own message. Requests without an Authorization header pass through
// unauthenticated; the Require* middlewares decide what that means.
func (mid *Middleware) Authenticate(next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")

		if authorizationHeader != "" {
			headerParts := strings.Split(authorizationHeader, " ")

			if len(headerParts) == 2 && headerParts[0] == "Bearer" {
				claims, err := mid.gate.Validate(headerParts[1])
				if err != nil {
					switch {
					case errors.Is(err, token.ErrTokenExpired):
						mid.errHandler.InvalidAuthenticationToken(w, r, "Authentication token has expired")
					case errors.Is(err, token.ErrSignatureInvalid):
						mid.errHandler.InvalidAuthenticationToken(w, r, "Authentication token signature is invalid")
					default:
						mid.errHandler.InvalidAuthenticationToken(w, r, "")
					}
					return
				}

				user, found, err := mid.userRepo.GetOne(claims.Subject)
				if err != nil {
					mid.errHandler.ServerError(w, r, err)
					return
				}

				if found && user.Status == repository.UserAccountActiveStatus {
					r = context.ContextSetAuthenticatedUser(r, user)
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) RequireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticatedUser := context.ContextGetAuthenticatedUser(r)

		if authenticatedUser == nil {
			mid.errHandler.AuthenticationRequired(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) RequireAdminUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticatedUser := context.ContextGetAuthenticatedUser(r)

		if authenticatedUser == nil {
			mid.errHandler.AuthenticationRequired(w, r)
			return
		}

		if authenticatedUser.Role != token.RoleAdmin {
			mid.errHandler.Forbidden(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
