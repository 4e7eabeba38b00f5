package core

import (
	"log/slog"

	"github.com/caasmo/identityoutbox/cache"
	"github.com/caasmo/identityoutbox/config"
	"github.com/caasmo/identityoutbox/mail"
	"github.com/caasmo/identityoutbox/router"
	"github.com/caasmo/identityoutbox/security/loginguard"
	"github.com/caasmo/identityoutbox/uow"
)

type Option func(*App)

// WithCache sets the cache implementation.
func WithCache(c cache.Cache[string, interface{}]) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithUnitOfWork sets the unit of work handlers open repository
// transactions against.
func WithUnitOfWork(u *uow.UnitOfWork) Option {
	return func(a *App) {
		a.uow = u
	}
}

// WithRouter sets the router implementation.
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithMailer sets the mail service used for ad-hoc, synchronous sends
// (e.g. a resend triggered directly from a handler). Relay-dispatched mail
// goes through handlers.RegisterEmailHandlers instead.
func WithMailer(m mail.Service) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithValidator overrides the default request validator.
func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}

// WithLoginGuard wires the failed-login sketch consulted by LoginHandler.
// Passing nil leaves login guarding disabled.
func WithLoginGuard(g *loginguard.Guard) Option {
	return func(a *App) {
		a.loginGuard = g
	}
}
