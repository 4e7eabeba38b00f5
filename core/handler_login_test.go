package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caasmo/identityoutbox/domain/user"
)

func TestLoginHandler(t *testing.T) {
	t.Run("valid credentials issue a session token", func(t *testing.T) {
		app := newTestApp(t)
		seedTestUser(t, app, "frank", "frank@example.com", "correcthorse", user.RoleUser)

		req := jsonRequest(http.MethodPost, "/api/login", `{"username":"frank","password":"correcthorse"}`)
		rr := httptest.NewRecorder()

		app.LoginHandler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
		}
		var resp JsonWithData
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != CodeOkAuthentication {
			t.Errorf("code = %q, want %q", resp.Code, CodeOkAuthentication)
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		app := newTestApp(t)
		seedTestUser(t, app, "frank", "frank@example.com", "correcthorse", user.RoleUser)

		req := jsonRequest(http.MethodPost, "/api/login", `{"username":"frank","password":"wrong"}`)
		rr := httptest.NewRecorder()

		app.LoginHandler(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("unknown username rejected", func(t *testing.T) {
		app := newTestApp(t)
		req := jsonRequest(http.MethodPost, "/api/login", `{"username":"nobody","password":"correcthorse"}`)
		rr := httptest.NewRecorder()

		app.LoginHandler(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
	})
}
