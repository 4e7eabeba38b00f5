package core

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/caasmo/identityoutbox/crypto"
	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/uow"
)

type contextKey int

const userContextKey contextKey = iota

// authenticate extracts the bearer session token, resolves the claimed
// user unverified (to recover email+passwordHash, the two ingredients of
// the per-user signing key per crypto.NewJwtSigningKeyWithCredentials),
// then re-parses the token with that derived key to verify signature and
// expiry. Returns the loaded aggregate on success.
func (a *App) authenticate(r *http.Request) (*user.User, jsonResponse) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errorNoAuthHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, errorInvalidTokenFormat
	}
	tokenString := parts[1]

	unverified, err := crypto.ParseJwtUnverified(tokenString, &crypto.SessionClaims{})
	if err != nil {
		return nil, errorJwtInvalidToken
	}

	id, err := uuid.Parse(unverified.UserID)
	if err != nil {
		return nil, errorJwtInvalidToken
	}

	u, err := uow.Execute(r.Context(), a.uow, func(rf uow.RepositoryFactory) (*user.User, error) {
		return rf.Users().FindByID(r.Context(), id.String())
	})
	if err != nil {
		return nil, errorJwtInvalidToken
	}

	signingKey, err := crypto.NewJwtSigningKeyWithCredentials(u.Email().Address(), u.PasswordHash(), string(a.Config().Jwt.AuthSecret))
	if err != nil {
		return nil, errorJwtInvalidToken
	}

	if _, err := crypto.ParseJwt(tokenString, signingKey, &crypto.SessionClaims{}); err != nil {
		switch err {
		case crypto.ErrJwtTokenExpired:
			return nil, errorJwtTokenExpired
		default:
			return nil, errorJwtInvalidToken
		}
	}

	return u, jsonResponse{}
}

// RequireAuth resolves the bearer token into a *user.User, stores it on the
// request context, and rejects the request otherwise. Handlers read the
// authenticated user back with UserFromContext.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, errResp := a.authenticate(r)
		if u == nil {
			WriteJsonError(w, errResp)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is RequireAuth plus policy.CanListUsers's admin-role check.
func (a *App) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if !CanListUsers(u.Role()) {
			WriteJsonError(w, errorForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// UserFromContext returns the *user.User a preceding RequireAuth/RequireAdmin
// stored on the request context, or nil if none is present.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userContextKey).(*user.User)
	return u
}
