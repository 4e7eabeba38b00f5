package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caasmo/identityoutbox/domain/user"
)

func TestAdminUserActions(t *testing.T) {
	app := newTestApp(t)
	registerAdminRoutes(app)
	admin := seedTestUser(t, app, "liam", "liam@example.com", "correcthorse", user.RoleAdmin)
	adminToken := bearerToken(t, app, admin)

	post := func(t *testing.T, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := withBearer(jsonRequest(http.MethodPost, path, body), adminToken)
		rr := httptest.NewRecorder()
		app.Router().ServeHTTP(rr, req)
		return rr
	}

	t.Run("suspend then unlock", func(t *testing.T) {
		target := seedTestUser(t, app, "mia", "mia@example.com", "correcthorse", user.RoleUser)
		base := "/api/admin/users/" + target.ID().String()

		rr := post(t, base+"/suspend", `{"reason":"abuse"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("suspend status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}

		rr = post(t, base+"/unlock", ``)
		if rr.Code != http.StatusOK {
			t.Fatalf("unlock status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("cannot suspend another admin", func(t *testing.T) {
		otherAdmin := seedTestUser(t, app, "noah", "noah@example.com", "correcthorse", user.RoleAdmin)
		rr := post(t, "/api/admin/users/"+otherAdmin.ID().String()+"/suspend", `{}`)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("promote user to admin", func(t *testing.T) {
		target := seedTestUser(t, app, "olga", "olga@example.com", "correcthorse", user.RoleUser)
		rr := post(t, "/api/admin/users/"+target.ID().String()+"/promote", ``)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("verify email", func(t *testing.T) {
		target := seedTestUser(t, app, "paul", "paul@example.com", "correcthorse", user.RoleUser)
		rr := post(t, "/api/admin/users/"+target.ID().String()+"/verify-email", ``)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("change email", func(t *testing.T) {
		target := seedTestUser(t, app, "quinn", "quinn@example.com", "correcthorse", user.RoleUser)
		rr := post(t, "/api/admin/users/"+target.ID().String()+"/change-email", `{"email":"newquinn@example.com"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("change email missing field rejected", func(t *testing.T) {
		target := seedTestUser(t, app, "rose", "rose@example.com", "correcthorse", user.RoleUser)
		rr := post(t, "/api/admin/users/"+target.ID().String()+"/change-email", `{}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("change username", func(t *testing.T) {
		target := seedTestUser(t, app, "sam", "sam@example.com", "correcthorse", user.RoleUser)
		rr := post(t, "/api/admin/users/"+target.ID().String()+"/change-username", `{"username":"sammy"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("deactivate requires an active, verified account", func(t *testing.T) {
		target := seedTestUser(t, app, "tom", "tom@example.com", "correcthorse", user.RoleUser)
		// tom is freshly signed up (PendingVerification), so Deactivate is
		// not a legal transition yet.
		rr := post(t, "/api/admin/users/"+target.ID().String()+"/deactivate", ``)
		if rr.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409, body=%s", rr.Code, rr.Body.String())
		}
	})
}
