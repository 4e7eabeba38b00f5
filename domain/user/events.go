package user

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the sealed sum type of facts a User aggregate can record.
// Each variant implements EventType (the outbox wire discriminator) in
// addition to the unexported marker, following spec's "UserEvent::X" naming
// for the discriminator string while keeping Go identifiers idiomatic.
type DomainEvent interface {
	isDomainEvent()
	// EventType is the outbox envelope's event_type discriminator.
	EventType() string
}

type UserCreated struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (UserCreated) isDomainEvent()    {}
func (UserCreated) EventType() string { return "UserEvent::Created" }

type UserSuspended struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Reason      string    `json:"reason"`
	SuspendedAt time.Time `json:"suspended_at"`
}

func (UserSuspended) isDomainEvent()    {}
func (UserSuspended) EventType() string { return "UserEvent::Suspended" }

type UserUnlocked struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

func (UserUnlocked) isDomainEvent()    {}
func (UserUnlocked) EventType() string { return "UserEvent::Unlocked" }

type UserDeactivated struct {
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

func (UserDeactivated) isDomainEvent()    {}
func (UserDeactivated) EventType() string { return "UserEvent::Deactivated" }

type UserReactivated struct {
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	ReactivatedAt time.Time `json:"reactivated_at"`
}

func (UserReactivated) isDomainEvent()    {}
func (UserReactivated) EventType() string { return "UserEvent::Reactivated" }

type UserPromotedToAdmin struct {
	UserID      uuid.UUID `json:"user_id"`
	PromotedAt  time.Time `json:"promoted_at"`
}

func (UserPromotedToAdmin) isDomainEvent()    {}
func (UserPromotedToAdmin) EventType() string { return "UserEvent::PromotedToAdmin" }

type UsernameChanged struct {
	UserID      uuid.UUID `json:"user_id"`
	OldUsername string    `json:"old_username"`
	NewUsername string    `json:"new_username"`
	Email       string    `json:"email"`
	ChangedAt   time.Time `json:"changed_at"`
}

func (UsernameChanged) isDomainEvent()    {}
func (UsernameChanged) EventType() string { return "UserEvent::UsernameChanged" }

type UserEmailChanged struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	NewEmail  string    `json:"new_email"`
	ChangedAt time.Time `json:"changed_at"`
}

func (UserEmailChanged) isDomainEvent()    {}
func (UserEmailChanged) EventType() string { return "UserEvent::EmailChanged" }

type UserEmailVerified struct {
	UserID     uuid.UUID `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

func (UserEmailVerified) isDomainEvent()    {}
func (UserEmailVerified) EventType() string { return "UserEvent::EmailVerified" }
