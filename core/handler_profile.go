package core

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/caasmo/identityoutbox/db"
	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/uow"
)

// profileDTO is the wire shape for a user account, shared by the
// own-profile, admin-get-profile and admin-list-users responses.
type profileDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toProfileDTO(u *user.User) profileDTO {
	return profileDTO{
		ID:        u.ID().String(),
		Username:  u.Username(),
		Email:     u.Email().Address(),
		Role:      string(u.Role()),
		Status:    u.State().Tag(),
		CreatedAt: u.CreatedAt().Format(rfc3339),
		UpdatedAt: u.UpdatedAt().Format(rfc3339),
	}
}

const rfc3339 = "2006-01-02T15:04:05Z07:00"

// ProfileHandler returns the authenticated caller's own profile (§6's
// get_own_profile).
func (a *App) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	u := UserFromContext(r.Context())
	WriteJsonWithData(w, *NewJsonWithData(http.StatusOK, CodeOkProfile, "Profile", toProfileDTO(u)))
}

// GetProfileHandler is the supplemented admin-only get-profile-by-id route
// (§5's get_profile): gated by policy.CanListUsers since only admins may
// look up an arbitrary account this way.
func (a *App) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r.Context())
	if !CanListUsers(actor.Role()) {
		WriteJsonError(w, errorForbidden)
		return
	}

	target, resp := a.loadUserParam(r)
	if target == nil {
		WriteJsonError(w, resp)
		return
	}

	WriteJsonWithData(w, *NewJsonWithData(http.StatusOK, CodeOkProfile, "Profile", toProfileDTO(target)))
}

// ListUsersHandler is the supplemented admin user listing (§5's
// list_users), gated by policy.CanListUsers.
func (a *App) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r.Context())
	if !CanListUsers(actor.Role()) {
		WriteJsonError(w, errorForbidden)
		return
	}

	users, err := uow.Execute(r.Context(), a.uow, func(rf uow.RepositoryFactory) ([]*user.User, error) {
		return rf.Users().FindAll(r.Context())
	})
	if err != nil {
		a.Logger().Error("list users", "error", err)
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	dtos := make([]profileDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toProfileDTO(u))
	}

	WriteJsonWithData(w, *NewJsonWithData(http.StatusOK, CodeOkUsers, "Users", dtos))
}

// loadUserParam resolves the ":id" path parameter into an aggregate,
// shared by every admin action handler.
func (a *App) loadUserParam(r *http.Request) (*user.User, jsonResponse) {
	idParam := a.Router().Param(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return nil, errorInvalidRequest
	}

	target, err := uow.Execute(r.Context(), a.uow, func(rf uow.RepositoryFactory) (*user.User, error) {
		return rf.Users().FindByID(r.Context(), id.String())
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errorNotFound
		}
		a.Logger().Error("load user by id", "error", err)
		return nil, errorServiceUnavailable
	}
	return target, jsonResponse{}
}
