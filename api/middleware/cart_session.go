package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/arjunmehta/desikart-backend/api/responses"
	"github.com/arjunmehta/desikart-backend/internal/cart"
	"github.com/arjunmehta/desikart-backend/pkg/config"
	pkgerrors "github.com/arjunmehta/desikart-backend/pkg/errors"
	"github.com/arjunmehta/desikart-backend/pkg/logger"
	"github.com/arjunmehta/desikart-backend/pkg/session"
)

// userIDHeader carries the authenticated user id, stamped by the edge proxy
// after it verifies the login token. It is trusted as-is here.
const userIDHeader = "X-User-Id"

// SessionMinter is the surface CartSession needs from the session manager.
type SessionMinter interface {
	Mint(ctx context.Context) (string, error)
	Validate(ctx context.Context, token string) error
}

// CartSession resolves the cart owner for every storefront request. Logged-in
// users are identified by the trusted user id header; guests get a redis-backed
// session token in a cookie, minted on first contact and re-minted whenever the
// presented token has expired.
func CartSession(manager SessionMinter, cfg config.SessionConfig, secureCookies bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := r.Header.Get(userIDHeader); raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id header"))
					return
				}
				owner := cart.Owner{UserID: &userID}
				if logg != nil {
					ctx = logg.WithCartOwner(ctx, owner.String())
				}
				next.ServeHTTP(w, r.WithContext(WithOwner(ctx, owner)))
				return
			}

			token := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				token = cookie.Value
			}

			if token != "" {
				err := manager.Validate(ctx, token)
				switch {
				case err == nil:
				case errors.Is(err, session.ErrUnknownSession):
					token = ""
				default:
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unavailable"))
					return
				}
			}

			if token == "" {
				minted, err := manager.Mint(ctx)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unavailable"))
					return
				}
				token = minted
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.TTL().Seconds()),
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			owner := cart.Owner{SessionKey: &token}
			if logg != nil {
				ctx = logg.WithCartOwner(ctx, owner.String())
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(ctx, owner)))
		})
	}
}
