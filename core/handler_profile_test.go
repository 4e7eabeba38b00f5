package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caasmo/identityoutbox/domain/user"
)

func TestProfileHandler(t *testing.T) {
	app := newTestApp(t)
	u := seedTestUser(t, app, "gina", "gina@example.com", "correcthorse", user.RoleUser)
	token := bearerToken(t, app, u)

	req := withBearer(httptest.NewRequest(http.MethodGet, "/api/profile", nil), token)
	rr := httptest.NewRecorder()

	app.RequireAuth(http.HandlerFunc(app.ProfileHandler)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
	}
	var resp JsonWithData
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != CodeOkProfile {
		t.Errorf("code = %q, want %q", resp.Code, CodeOkProfile)
	}
}

func TestGetProfileHandler(t *testing.T) {
	app := newTestApp(t)
	registerAdminRoutes(app)
	admin := seedTestUser(t, app, "henry", "henry@example.com", "correcthorse", user.RoleAdmin)
	target := seedTestUser(t, app, "iris", "iris@example.com", "correcthorse", user.RoleUser)

	t.Run("admin can look up another user", func(t *testing.T) {
		req := withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/users/"+target.ID().String(), nil), bearerToken(t, app, admin))
		rr := httptest.NewRecorder()

		app.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		req := withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/users/"+target.ID().String(), nil), bearerToken(t, app, target))
		rr := httptest.NewRecorder()

		app.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rr.Code)
		}
	})

	t.Run("unknown id not found", func(t *testing.T) {
		req := withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/users/"+uuidNil, nil), bearerToken(t, app, admin))
		rr := httptest.NewRecorder()

		app.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rr.Code)
		}
	})
}

func TestListUsersHandler(t *testing.T) {
	app := newTestApp(t)
	registerAdminRoutes(app)
	admin := seedTestUser(t, app, "jack", "jack@example.com", "correcthorse", user.RoleAdmin)
	seedTestUser(t, app, "kate", "kate@example.com", "correcthorse", user.RoleUser)

	req := withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), bearerToken(t, app, admin))
	rr := httptest.NewRecorder()

	app.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
	}

	var resp JsonWithData
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data, ok := resp.Data.([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 users in listing, got %#v", resp.Data)
	}
}

// uuidNil is a syntactically valid but never-assigned id, used to exercise
// the not-found path.
const uuidNil = "00000000-0000-0000-0000-000000000000"
