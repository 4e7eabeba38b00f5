// Package custom is the seam between the wired HTTP application (core.App)
// and its background relay worker: the pair New hands to a server.Server.
package custom

import (
	"github.com/caasmo/identityoutbox/core"
	"github.com/caasmo/identityoutbox/relay"
)

type App struct {
	*core.App // Embedding core.App
	Relay *relay.Worker
}

func NewApp(ap *core.App, worker *relay.Worker) *App {
	return &App{
		App:   ap,
		Relay: worker,
	}
}
