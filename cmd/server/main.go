// Command server starts the identity service: HTTP listener, relay worker
// and their shared configuration. Grounded on the teacher's cmd/server
// entrypoint (flag-parsed db path, config.Load, restinpieces.New, srv.Run).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caasmo/identityoutbox/config"
	restinpieces "github.com/caasmo/identityoutbox"
)

func main() {
	dbPath := flag.String("db", "app.db", "path to the SQLite database file")
	flag.Parse()

	cfg, err := config.Load(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: load config: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "server: invalid config: %v\n", err)
		os.Exit(1)
	}

	_, srv, err := restinpieces.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: setup: %v\n", err)
		os.Exit(1)
	}

	srv.Run()
}
