package core

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/caasmo/identityoutbox/clock"
	"github.com/caasmo/identityoutbox/config"
	"github.com/caasmo/identityoutbox/crypto"
	"github.com/caasmo/identityoutbox/db/zombiezen"
	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/idgen"
	"github.com/caasmo/identityoutbox/migrations"
	"github.com/caasmo/identityoutbox/router"
	"github.com/caasmo/identityoutbox/router/httprouter"
	"github.com/caasmo/identityoutbox/uow"
	"github.com/google/uuid"
)

const testJwtSecret = "01234567890123456789012345678901"

// newTestDb mirrors relay/worker_test.go's in-memory schema bootstrap.
func newTestDb(t *testing.T) *zombiezen.Db {
	t.Helper()
	pool, err := sqlitex.NewPool("file::memory:?mode=memory&cache=shared", sqlitex.PoolOptions{PoolSize: 1})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("take conn: %v", err)
	}
	defer pool.Put(conn)

	migs, err := migrations.All()
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	for _, m := range migs {
		if err := sqlitex.ExecuteScript(conn, m.Up, nil); err != nil {
			t.Fatalf("apply migration %s: %v", m.Name, err)
		}
	}

	return zombiezen.NewFromPool(pool)
}

// newTestApp builds an *App backed by a real in-memory database, wired the
// way restinpieces.New wires one, minus the relay/router-registration
// concerns that live outside core/.
func newTestApp(t *testing.T) *App {
	t.Helper()
	d := newTestDb(t)
	u := uow.New(d, clock.Real{}, idgen.NewMonotonic())

	cfg := &config.Config{
		Jwt: config.Jwt{
			AuthSecret:        []byte(testJwtSecret),
			AuthTokenDuration: time.Hour,
		},
	}

	app, err := NewApp(
		WithUnitOfWork(u),
		WithRouter(httprouter.New()),
		WithConfigProvider(config.NewProvider(cfg)),
		WithLogger(slog.New(slog.NewTextHandler(testWriter{t}, nil))),
	)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Logf("%s", p)
	return len(p), nil
}

// seedTestUser persists a user aggregate directly (bypassing SignupHandler)
// for tests that need a precooked account.
func seedTestUser(t *testing.T, app *App, username, email, password string, role user.Role) *user.User {
	t.Helper()
	hash, err := crypto.GenerateHash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	created, err := uow.Execute(context.Background(), app.uow, func(rf uow.RepositoryFactory) (*user.User, error) {
		u := user.New(id, username, email, hash, now)
		if role == user.RoleAdmin {
			if err := u.PromoteToAdmin(now); err != nil {
				return nil, err
			}
		}
		if err := rf.Users().Save(context.Background(), u); err != nil {
			return nil, err
		}
		return u, nil
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return created
}

// bearerToken issues a valid session token for u the way LoginHandler does.
func bearerToken(t *testing.T, app *App, u *user.User) string {
	t.Helper()
	tok, err := crypto.NewJwtSessionToken(u.ID().String(), u.Email().Address(), u.PasswordHash(), string(app.Config().Jwt.AuthSecret), app.Config().Jwt.AuthTokenDuration)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", MimeTypeJSON)
	return req
}

// registerAdminRoutes wires the ":id"-parameterized admin routes onto
// app's router so tests can dispatch through router.ServeHTTP and get a
// real path-parameter binding, the same way registerRoutes does in the
// wiring package.
func registerAdminRoutes(app *App) {
	app.Router().Register(router.Chains{
		"GET /api/admin/users":                     router.NewChain(http.HandlerFunc(app.ListUsersHandler)).WithMiddleware(app.RequireAdmin),
		"GET /api/admin/users/:id":                  router.NewChain(http.HandlerFunc(app.GetProfileHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/suspend":         router.NewChain(http.HandlerFunc(app.SuspendUserHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/unlock":          router.NewChain(http.HandlerFunc(app.UnlockUserHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/deactivate":      router.NewChain(http.HandlerFunc(app.DeactivateUserHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/activate":        router.NewChain(http.HandlerFunc(app.ActivateUserHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/promote":         router.NewChain(http.HandlerFunc(app.PromoteUserHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/verify-email":    router.NewChain(http.HandlerFunc(app.VerifyEmailHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/change-email":    router.NewChain(http.HandlerFunc(app.ChangeEmailHandler)).WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/change-username": router.NewChain(http.HandlerFunc(app.ChangeUsernameHandler)).WithMiddleware(app.RequireAdmin),
	})
}
