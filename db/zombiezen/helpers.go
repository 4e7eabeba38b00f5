package zombiezen

import (
	"crypto/rand"
	"encoding/hex"

	"zombiezen.com/go/sqlite"

	"github.com/google/uuid"
)

func parseUUIDColumn(stmt *sqlite.Stmt, col string) (uuid.UUID, error) {
	return uuid.Parse(stmt.GetText(col))
}

// leaseToken generates a short random fencing token identifying the
// relay instance that leased a batch of envelopes.
func leaseToken() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
