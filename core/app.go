package core

import (
	"fmt"
	"log/slog"

	"github.com/caasmo/identityoutbox/cache"
	"github.com/caasmo/identityoutbox/config"
	"github.com/caasmo/identityoutbox/mail"
	"github.com/caasmo/identityoutbox/router"
	"github.com/caasmo/identityoutbox/security/loginguard"
	"github.com/caasmo/identityoutbox/uow"
)

// App is the application wide context for the HTTP layer. Handlers and
// middleware all take App as receiver so they share one set of heavy
// objects: the unit of work, router, cache, config and logger.
type App struct {
	uow            *uow.UnitOfWork
	router         router.Router
	cache          cache.Cache[string, interface{}]
	configProvider *config.Provider
	logger         *slog.Logger
	mailer         mail.Service
	validator      Validator
	loginGuard     *loginguard.Guard
}

func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.uow == nil {
		return nil, fmt.Errorf("core: uow is required but was not provided")
	}
	if a.router == nil {
		return nil, fmt.Errorf("core: router is required but was not provided")
	}
	if a.configProvider == nil {
		return nil, fmt.Errorf("core: config provider is required but was not provided")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("core: logger is required but was not provided")
	}
	if a.validator == nil {
		a.validator = NewValidator()
	}

	return a, nil
}

// Router returns the application's router instance.
func (a *App) Router() router.Router {
	return a.router
}

// UnitOfWork returns the unit of work used to open repository transactions.
func (a *App) UnitOfWork() *uow.UnitOfWork {
	return a.uow
}

// Logger returns the application's logger instance.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Cache returns the application's cache instance.
func (a *App) Cache() cache.Cache[string, interface{}] {
	return a.cache
}

// Mailer returns the application's mail service.
func (a *App) Mailer() mail.Service {
	return a.mailer
}

// Validator returns the application's request validator.
func (a *App) Validator() Validator {
	return a.validator
}

// Config returns the currently active application config instance.
func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

// ConfigProvider returns the underlying hot-swappable config provider.
func (a *App) ConfigProvider() *config.Provider {
	return a.configProvider
}

// LoginGuard returns the failed-login sketch used by LoginHandler to deny
// clients that exceed the configured failure share. Nil when disabled.
func (a *App) LoginGuard() *loginguard.Guard {
	return a.loginGuard
}

// SetConfigProvider wires the config provider. Exposed as a setter (rather
// than only an Option) so tests can construct a minimal *App without going
// through NewApp's full validation.
func (a *App) SetConfigProvider(p *config.Provider) {
	a.configProvider = p
}
