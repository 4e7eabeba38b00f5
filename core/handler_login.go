package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caasmo/identityoutbox/crypto"
	"github.com/caasmo/identityoutbox/db"
	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/uow"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler looks the user up by username, verifies the bcrypt hash and
// issues a session token derived from that user's own email+passwordHash
// (crypto.NewJwtSessionToken): changing the password invalidates every
// outstanding session without a revocation list.
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}

	ip := a.GetClientIP(r)
	if a.LoginGuard().IsBlocked(ip) {
		WriteJsonError(w, errorTooManyFailedLogins)
		return
	}

	u, err := uow.Execute(r.Context(), a.uow, func(rf uow.RepositoryFactory) (*user.User, error) {
		return rf.Users().FindByUsername(r.Context(), req.Username)
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			a.LoginGuard().RecordFailure(ip)
			WriteJsonError(w, errorInvalidCredentials)
			return
		}
		a.Logger().Error("login: find user", "error", err)
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	if !crypto.CheckPassword(req.Password, u.PasswordHash()) {
		a.LoginGuard().RecordFailure(ip)
		WriteJsonError(w, errorInvalidCredentials)
		return
	}

	token, err := crypto.NewJwtSessionToken(u.ID().String(), u.Email().Address(), u.PasswordHash(), string(a.Config().Jwt.AuthSecret), a.Config().Jwt.AuthTokenDuration)
	if err != nil {
		a.Logger().Error("login: issue session token", "error", err)
		WriteJsonError(w, errorTokenGeneration)
		return
	}

	WriteJsonWithData(w, *NewJsonWithData(http.StatusOK, CodeOkAuthentication, "Login successful", map[string]string{
		"token": token,
	}))
}
