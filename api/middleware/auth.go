package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ichaoui56/e-commerce-backoffice/api/responses"
	pkgAuth "github.com/ichaoui56/e-commerce-backoffice/pkg/auth"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/auth/session"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/logger"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/outbox"
)

// Auth admits requests carrying a valid bearer token whose session is still
// live in redis. The admin becomes the Principal of the request and the actor
// of any journal event written downstream.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, raw)
			switch {
			case errors.Is(err, pkgAuth.ErrTokenExpired):
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token expired"))
				return
			case err != nil:
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if sessions != nil {
				live, err := sessions.HasSession(ctx, claims.ID)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !live {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked or expired"))
					return
				}
			}

			ctx = WithPrincipal(ctx, Principal{UserID: claims.UserID, Role: claims.Role, AccessID: claims.ID})
			ctx = outbox.ContextWithActor(ctx, outbox.ActorRef{UserID: claims.UserID, Role: string(claims.Role)})
			ctx = logg.WithFields(ctx, map[string]any{
				"user_id":    claims.UserID.String(),
				"actor_role": string(claims.Role),
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts "Bearer <token>" with any casing of the scheme.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
