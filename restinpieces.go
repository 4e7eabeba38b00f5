// Package restinpieces wires the identity service's components together:
// storage backend, unit of work, handler registry, relay worker, router and
// HTTP server. Grounded on the teacher's root-level restinpieces.go New()
// (db/router/cache/logger bootstrap, then daemons registered on the
// returned *server.Server), generalized from the teacher's OAuth2/queue
// stack to the outbox/relay stack.
package restinpieces

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/caasmo/identityoutbox/backup"
	"github.com/caasmo/identityoutbox/cache/ristretto"
	"github.com/caasmo/identityoutbox/clock"
	"github.com/caasmo/identityoutbox/config"
	"github.com/caasmo/identityoutbox/core"
	"github.com/caasmo/identityoutbox/custom"
	"github.com/caasmo/identityoutbox/db/crawshaw"
	"github.com/caasmo/identityoutbox/db/zombiezen"
	"github.com/caasmo/identityoutbox/handlers"
	"github.com/caasmo/identityoutbox/idgen"
	"github.com/caasmo/identityoutbox/mail"
	"github.com/caasmo/identityoutbox/notify"
	"github.com/caasmo/identityoutbox/notify/discord"
	"github.com/caasmo/identityoutbox/relay"
	"github.com/caasmo/identityoutbox/router"
	"github.com/caasmo/identityoutbox/router/httprouter"
	"github.com/caasmo/identityoutbox/security/loginguard"
	"github.com/caasmo/identityoutbox/server"
	"github.com/caasmo/identityoutbox/uow"
)

// New builds the application from cfg: storage backend, unit of work,
// handler registry and relay worker are always built from cfg; opts let the
// caller override the default router, cache or logger (applied after the
// defaults, so the last option for a given field wins).
func New(cfg *config.Config, opts ...core.Option) (*custom.App, *server.Server, error) {
	provider := config.NewProvider(cfg)

	tx, err := openBackend(cfg.DBDriver, cfg.DBFile)
	if err != nil {
		return nil, nil, fmt.Errorf("restinpieces: open database: %w", err)
	}

	u := uow.New(tx, clock.Real{}, idgen.NewMonotonic())

	registry := handlers.NewRegistry()
	mailer := mail.New(cfg.Smtp)
	handlers.RegisterEmailHandlers(registry, mailer)

	notifier, err := newNotifier(cfg)
	if err != nil {
		tx.Close()
		return nil, nil, err
	}

	cacheInstance, err := ristretto.New[any]("medium")
	if err != nil {
		tx.Close()
		return nil, nil, fmt.Errorf("restinpieces: init cache: %w", err)
	}

	defaults := []core.Option{
		core.WithRouter(httprouter.New()),
		core.WithCache(cacheInstance),
		core.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, DefaultLoggerOptions))),
		core.WithUnitOfWork(u),
		core.WithConfigProvider(provider),
		core.WithMailer(mailer),
		core.WithLoginGuard(loginguard.New(cfg.LoginGuard)),
	}

	app, err := core.NewApp(append(defaults, opts...)...)
	if err != nil {
		tx.Close()
		return nil, nil, err
	}

	registerRoutes(app)

	worker := relay.New(tx, clock.Real{}, registry, notifier, cfg.Relay, app.Logger())

	reload := func() error {
		// Secrets are environment-sourced (config.Load); re-reading env on
		// SIGHUP picks up rotated JWT/SMTP credentials without a restart.
		reloaded, err := config.Load(cfg.DBFile)
		if err != nil {
			return fmt.Errorf("restinpieces: reload config: %w", err)
		}
		provider.Update(reloaded)
		return nil
	}

	srv := server.NewServer(provider, app.Router(), app.Logger(), reload)
	srv.AddDaemon(worker)

	if cfg.Backup.Enabled {
		replicator, err := backup.New(cfg.DBFile, cfg.Backup, app.Logger())
		if err != nil {
			tx.Close()
			return nil, nil, fmt.Errorf("restinpieces: init backup replication: %w", err)
		}
		srv.AddDaemon(replicator)
	}

	return custom.NewApp(app, worker), srv, nil
}

// closableTx is the subset of uow.Tx plus lifecycle Close that both storage
// backends implement; openBackend returns this instead of a concrete type
// so either can be selected from cfg.DBDriver.
type closableTx interface {
	uow.Tx
	Close() error
}

// openBackend selects the storage backend named by driver. Unset or
// "zombiezen" opens the pure-Go primary backend; "crawshaw" opens the cgo
// secondary backend (db/crawshaw), grounded on the teacher's
// restinpieces_sqlite_drivers.go dual-driver support.
func openBackend(driver, dbFile string) (closableTx, error) {
	switch driver {
	case "", config.DBDriverZombiezen:
		return zombiezen.New(dbFile)
	case config.DBDriverCrawshaw:
		return crawshaw.Open(dbFile)
	default:
		return nil, fmt.Errorf("restinpieces: unknown db driver %q", driver)
	}
}

// registerRoutes mirrors the teacher's restinpieces_routes.go registration
// style (router.Chains keyed "METHOD /path"), renamed to this domain's
// signup/login/profile/admin surface (SPEC_FULL.md §4).
func registerRoutes(app *core.App) {
	r := app.Router()

	r.Register(router.Chains{
		"POST /api/signup": router.NewChain(http.HandlerFunc(app.SignupHandler)),
		"POST /api/login":  router.NewChain(http.HandlerFunc(app.LoginHandler)),

		"GET /api/profile": router.NewChain(http.HandlerFunc(app.ProfileHandler)).
			WithMiddleware(app.RequireAuth),
		"GET /api/profile/export": router.NewChain(http.HandlerFunc(app.ExportProfileHandler)).
			WithMiddleware(app.RequireAuth),

		"GET /api/admin/users": router.NewChain(http.HandlerFunc(app.ListUsersHandler)).
			WithMiddleware(app.RequireAdmin),
		"GET /api/admin/users/:id": router.NewChain(http.HandlerFunc(app.GetProfileHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/suspend": router.NewChain(http.HandlerFunc(app.SuspendUserHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/unlock": router.NewChain(http.HandlerFunc(app.UnlockUserHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/deactivate": router.NewChain(http.HandlerFunc(app.DeactivateUserHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/activate": router.NewChain(http.HandlerFunc(app.ActivateUserHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/promote": router.NewChain(http.HandlerFunc(app.PromoteUserHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/verify-email": router.NewChain(http.HandlerFunc(app.VerifyEmailHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/change-email": router.NewChain(http.HandlerFunc(app.ChangeEmailHandler)).
			WithMiddleware(app.RequireAdmin),
		"POST /api/admin/users/:id/change-username": router.NewChain(http.HandlerFunc(app.ChangeUsernameHandler)).
			WithMiddleware(app.RequireAdmin),

		"GET /favicon.ico": router.NewChain(http.HandlerFunc(core.FaviconHandler)),
	})
}

func newNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.Discord.Enabled {
		return notify.NewNilNotifier(), nil
	}
	return discord.New(cfg.Discord, slog.Default())
}

// DefaultLoggerOptions matches the teacher's slog bootstrap defaults: debug
// level, timestamps stripped since the process supervisor timestamps
// output.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}
