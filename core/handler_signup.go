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

const minPasswordLength = 8

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupHandler opens one unit of work: user.New queues UserCreated,
// UserRepository.Save persists the row, and uow.Execute drains the event
// into the outbox for the relay to pick up (the welcome/verification email
// is a registered outbox handler, not sent synchronously here).
func (a *App) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}
	if len(req.Password) < minPasswordLength {
		WriteJsonError(w, errorPasswordComplexity)
		return
	}

	passwordHash, err := crypto.GenerateHash(req.Password)
	if err != nil {
		a.Logger().Error("signup: hash password", "error", err)
		WriteJsonError(w, errorRegistrationFailed)
		return
	}

	now := a.uow.Clock().Now()
	id, err := a.uow.IDs().NewID()
	if err != nil {
		a.Logger().Error("signup: generate id", "error", err)
		WriteJsonError(w, errorRegistrationFailed)
		return
	}

	newUser := user.New(id, req.Username, req.Email, passwordHash, now)

	_, err = uow.Execute(r.Context(), a.uow, func(rf uow.RepositoryFactory) (struct{}, error) {
		return struct{}{}, rf.Users().Save(r.Context(), newUser)
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrUsernameConflict):
			WriteJsonError(w, errorUsernameConflict)
		case errors.Is(err, db.ErrEmailConflict):
			WriteJsonError(w, errorEmailConflict)
		default:
			a.Logger().Error("signup: save user", "error", err)
			WriteJsonError(w, errorRegistrationFailed)
		}
		return
	}

	token, err := crypto.NewJwtSessionToken(newUser.ID().String(), req.Email, passwordHash, string(a.Config().Jwt.AuthSecret), a.Config().Jwt.AuthTokenDuration)
	if err != nil {
		a.Logger().Error("signup: issue session token", "error", err)
		WriteJsonError(w, errorTokenGeneration)
		return
	}

	WriteJsonWithData(w, *NewJsonWithData(http.StatusCreated, CodeOkAuthentication, "Account created", map[string]string{
		"token": token,
	}))
}
