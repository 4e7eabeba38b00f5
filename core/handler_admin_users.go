package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/uow"
)

// userAction mutates target in place, recording whatever domain event the
// transition produces; the caller persists target and drains that event.
type userAction func(target *user.User, now time.Time) error

// performUserAction is the shared shape of every admin user-management
// route: load the ":id" target, gate with policy.CanSuspend, run action,
// save inside one unit of work, respond with the updated profile.
func (a *App) performUserAction(w http.ResponseWriter, r *http.Request, action userAction) {
	actor := UserFromContext(r.Context())

	target, resp := a.loadUserParam(r)
	if target == nil {
		WriteJsonError(w, resp)
		return
	}

	if !CanSuspend(actor.Role(), *target) {
		WriteJsonError(w, errorForbidden)
		return
	}

	if err := action(target, a.uow.Clock().Now()); err != nil {
		if errors.Is(err, user.ErrInvalidTransition) || errors.Is(err, user.ErrNotSuspended) || errors.Is(err, user.ErrNotVerified) ||
			errors.Is(err, user.ErrAlreadySuspended) || errors.Is(err, user.ErrAlreadyDeactivated) {
			WriteJsonError(w, errorInvalidTransition)
			return
		}
		a.Logger().Error("admin user action", "error", err)
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	_, err := uow.Execute(r.Context(), a.uow, func(rf uow.RepositoryFactory) (struct{}, error) {
		return struct{}{}, rf.Users().Save(r.Context(), target)
	})
	if err != nil {
		a.Logger().Error("admin user action: save", "error", err)
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	WriteJsonWithData(w, *NewJsonWithData(http.StatusOK, CodeOkUserUpdated, "User updated", toProfileDTO(target)))
}

// SuspendUserHandler suspends the target account. Body is an optional
// {"reason": string}.
func (a *App) SuspendUserHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.Suspend(body.Reason, now)
	})
}

// UnlockUserHandler lifts an admin suspension.
func (a *App) UnlockUserHandler(w http.ResponseWriter, r *http.Request) {
	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.UnlockSuspension(now)
	})
}

// DeactivateUserHandler self-service-deactivates the target account on the
// admin's behalf.
func (a *App) DeactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.Deactivate(now)
	})
}

// ActivateUserHandler reverses DeactivateUserHandler.
func (a *App) ActivateUserHandler(w http.ResponseWriter, r *http.Request) {
	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.Activate(now)
	})
}

// PromoteUserHandler is the supplemented admin promotion route (§5): role
// only ever moves user -> admin (I-U5). A target that is already an admin is
// refused by CanSuspend with 403.
func (a *App) PromoteUserHandler(w http.ResponseWriter, r *http.Request) {
	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.PromoteToAdmin(now)
	})
}

// VerifyEmailHandler force-verifies the target's current email, bypassing
// the format check an end-user verification link would apply (nil
// EmailVerifier).
func (a *App) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.VerifyEmail(nil, now)
	})
}

// ChangeEmailHandler sets a new unverified email on the target, body
// {"email": string}.
func (a *App) ChangeEmailHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(body.Email); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.ChangeEmail(body.Email, now)
	})
}

// ChangeUsernameHandler sets a new username on the target, body
// {"username": string}.
func (a *App) ChangeUsernameHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}

	a.performUserAction(w, r, func(target *user.User, now time.Time) error {
		return target.ChangeUsername(body.Username, now)
	})
}
