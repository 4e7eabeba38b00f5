package uow

import (
	"encoding/json"

	"github.com/caasmo/identityoutbox/domain/user"
)

// marshalEvent serializes a DomainEvent to its JSON wire form. Go's
// encoding/json marshals through the concrete struct regardless of the
// static interface type, so no per-variant switch is needed here; the
// switch lives on the read side (handlers.Registry) where the event_type
// discriminator selects the concrete struct to unmarshal into.
func marshalEvent(ev user.DomainEvent) ([]byte, error) {
	return json.Marshal(ev)
}
