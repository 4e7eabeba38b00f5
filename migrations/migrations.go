package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed schema/**/*.sql
var schemaFS embed.FS

// Schema returns the embedded schema filesystem
func Schema() fs.FS {
	fs, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		panic(err) // should never happen since we control the embed path
	}
	return fs
}

// Migration pairs one forward schema script with its reverse. Every
// migration must be reversible (spec.md §6), matching the ground truth's
// sea-orm up()/down() pairs (migration/src/m20260107_121138_create_outbox_table.rs
// creates the table in up() and drops it in down()).
type Migration struct {
	Name string // e.g. "app/users"
	Up   string
	Down string
}

// applyOrder lists migrations in the order their Up script must run.
// DownAll applies the reverse of this order, so a later migration's Down
// script always runs before an earlier one's.
var applyOrder = []string{"app/users", "app/outbox"}

// All reads every migration pair named in applyOrder from the embedded
// schema filesystem, in forward-apply order.
func All() ([]Migration, error) {
	fsys := Schema()
	migs := make([]Migration, 0, len(applyOrder))
	for _, name := range applyOrder {
		up, err := fs.ReadFile(fsys, name+".up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: read %s.up.sql: %w", name, err)
		}
		down, err := fs.ReadFile(fsys, name+".down.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: read %s.down.sql: %w", name, err)
		}
		migs = append(migs, Migration{Name: name, Up: string(up), Down: string(down)})
	}
	return migs, nil
}

// DownAll returns every migration's Down script in reverse apply order —
// the order a full rollback must run them in so a later table's drop
// never outruns an earlier one it might depend on.
func DownAll() ([]Migration, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}
	reversed := make([]Migration, len(all))
	for i, m := range all {
		reversed[len(all)-1-i] = m
	}
	return reversed, nil
}
