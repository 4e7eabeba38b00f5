// Package user implements the User aggregate: its sum-typed state and email
// variants, the domain events it emits, and the operations spec.md §4.1
// names. The aggregate is single-writer — callers must not share a *User
// across goroutines without external synchronization.
package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is never weakened by any operation in this package (I-U5): the only
// direction role moves is user -> admin, via PromoteToAdmin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity aggregate. events is the in-memory, single-writer
// buffer drained by the entity tracker at unit-of-work commit time.
type User struct {
	id           uuid.UUID
	username     string
	passwordHash string
	role         Role
	createdAt    time.Time
	updatedAt    time.Time
	state        UserState

	events []DomainEvent
}

// New constructs a freshly signed-up User in PendingVerification, queuing
// one UserCreated event.
func New(id uuid.UUID, username, unverifiedEmail, passwordHash string, now time.Time) *User {
	u := &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         RoleUser,
		createdAt:    now,
		updatedAt:    now,
		state:        PendingVerification{Email: NewUnverifiedEmail(unverifiedEmail)},
	}
	u.record(UserCreated{
		UserID:       id,
		Username:     username,
		Email:        unverifiedEmail,
		RegisteredAt: now,
	})
	return u
}

// Reconstruct rehydrates a User from persisted fields. Rehydration is
// silent: no events are queued.
func Reconstruct(id uuid.UUID, username, passwordHash string, role Role, createdAt, updatedAt time.Time, state UserState) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		role:         role,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		state:        state,
	}
}

func (u *User) ID() uuid.UUID          { return u.id }
func (u *User) Username() string       { return u.username }
func (u *User) PasswordHash() string   { return u.passwordHash }
func (u *User) Role() Role             { return u.role }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }
func (u *User) State() UserState       { return u.state }
func (u *User) Email() Email           { return emailOf(u.state) }

// SetPasswordHash replaces the stored hash directly and bumps updatedAt; it
// records no domain event and leaves the state unchanged.
func (u *User) SetPasswordHash(hash string, now time.Time) {
	u.passwordHash = hash
	u.updatedAt = now
}

// DrainEvents returns and clears the in-memory event list (I-U3 depends on
// the caller doing this exactly once per unit-of-work).
func (u *User) DrainEvents() []DomainEvent {
	ev := u.events
	u.events = nil
	return ev
}

func (u *User) record(e DomainEvent) {
	u.events = append(u.events, e)
}

// ChangeUsername is always legal.
func (u *User) ChangeUsername(newUsername string, now time.Time) error {
	old := u.username
	u.username = newUsername
	u.updatedAt = now
	u.record(UsernameChanged{
		UserID:      u.id,
		OldUsername: old,
		NewUsername: newUsername,
		Email:       u.Email().Address(),
		ChangedAt:   now,
	})
	return nil
}

// ChangeEmail rejects Suspended/Deactivated states outright.
func (u *User) ChangeEmail(newUnverifiedEmail string, now time.Time) error {
	switch u.state.(type) {
	case SuspendedByAdmin:
		return ErrAlreadySuspended
	case DeactivatedByUser:
		return ErrAlreadyDeactivated
	}

	switch s := u.state.(type) {
	case PendingVerification:
		u.state = PendingVerification{Email: NewUnverifiedEmail(newUnverifiedEmail)}
	case ActiveWithUnverifiedEmail:
		u.state = ActiveWithUnverifiedEmail{Email: NewUnverifiedEmail(newUnverifiedEmail)}
	case Active:
		u.state = ActiveWithUnverifiedEmail{Email: NewUnverifiedEmail(newUnverifiedEmail)}
	default:
		_ = s
		return ErrInvalidTransition
	}
	u.updatedAt = now
	u.record(UserEmailChanged{
		UserID:    u.id,
		Username:  u.username,
		NewEmail:  newUnverifiedEmail,
		ChangedAt: now,
	})
	return nil
}

// VerifyEmail promotes PendingVerification/ActiveWithUnverifiedEmail to
// Active. Idempotent on Active — still emits UserEmailVerified, since a
// transition that errors without mutating and a transition that emits
// exactly one event are the only two outcomes (no silent no-op: spec.md
// §8 P6, ground-truth `verify_email` in entity.rs records its event
// unconditionally after the match, including the already-Active arm).
func (u *User) VerifyEmail(verifier EmailVerifier, now time.Time) error {
	switch s := u.state.(type) {
	case Active:
		// idempotent: state already satisfies the transition, but an
		// event is still recorded below.
	case SuspendedByAdmin:
		return ErrAlreadySuspended
	case DeactivatedByUser:
		return ErrAlreadyDeactivated
	case PendingVerification:
		if verifier != nil && !verifier.Valid(s.Email.Address()) {
			return ErrInvalidTransition
		}
		u.state = Active{Email: NewVerifiedEmail(s.Email.Address())}
	case ActiveWithUnverifiedEmail:
		if verifier != nil && !verifier.Valid(s.Email.Address()) {
			return ErrInvalidTransition
		}
		u.state = Active{Email: NewVerifiedEmail(s.Email.Address())}
	default:
		return ErrInvalidTransition
	}
	u.updatedAt = now
	u.record(UserEmailVerified{UserID: u.id, VerifiedAt: now})
	return nil
}

// Suspend demotes any verified email to unverified and is idempotent when
// already SuspendedByAdmin — still emits UserSuspended (spec.md §8 P6; the
// ground-truth `suspend` in entity.rs records its event unconditionally,
// including its already-suspended no-op arm).
func (u *User) Suspend(reason string, now time.Time) error {
	if s, ok := u.state.(SuspendedByAdmin); ok {
		u.updatedAt = now
		u.record(UserSuspended{
			UserID:      u.id,
			Username:    u.username,
			Email:       s.Email.Address(),
			Reason:      reason,
			SuspendedAt: now,
		})
		return nil
	}
	email := demote(emailOf(u.state))
	u.state = SuspendedByAdmin{Email: email, Reason: reason}
	u.updatedAt = now
	u.record(UserSuspended{
		UserID:      u.id,
		Username:    u.username,
		Email:       email.Address(),
		Reason:      reason,
		SuspendedAt: now,
	})
	return nil
}

// UnlockSuspension is only legal from SuspendedByAdmin.
func (u *User) UnlockSuspension(now time.Time) error {
	s, ok := u.state.(SuspendedByAdmin)
	if !ok {
		return ErrNotSuspended
	}
	u.state = ActiveWithUnverifiedEmail{Email: s.Email}
	u.updatedAt = now
	u.record(UserUnlocked{
		UserID:     u.id,
		Username:   u.username,
		Email:      s.Email.Address(),
		UnlockedAt: now,
	})
	return nil
}

// Deactivate is only legal from Active; idempotent on DeactivatedByUser —
// still emits UserDeactivated (spec.md §8 P6; ground-truth `deactivate` in
// entity.rs records its event unconditionally, including its
// already-deactivated no-op arm).
func (u *User) Deactivate(now time.Time) error {
	switch s := u.state.(type) {
	case DeactivatedByUser:
		u.updatedAt = now
		u.record(UserDeactivated{
			UserID:        u.id,
			Username:      u.username,
			Email:         s.Email.Address(),
			DeactivatedAt: now,
		})
		return nil
	case SuspendedByAdmin:
		return ErrAlreadySuspended
	case PendingVerification, ActiveWithUnverifiedEmail:
		return ErrNotVerified
	case Active:
		email := s.Email
		u.state = DeactivatedByUser{Email: email}
		u.updatedAt = now
		u.record(UserDeactivated{
			UserID:        u.id,
			Username:      u.username,
			Email:         email.Address(),
			DeactivatedAt: now,
		})
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Activate is only legal from DeactivatedByUser; idempotent on Active —
// still emits UserReactivated (spec.md §8 P6; ground-truth `activate` in
// entity.rs records its event unconditionally, including its
// already-active no-op arm).
func (u *User) Activate(now time.Time) error {
	switch s := u.state.(type) {
	case Active:
		u.updatedAt = now
		u.record(UserReactivated{
			UserID:        u.id,
			Username:      u.username,
			Email:         s.Email.Address(),
			ReactivatedAt: now,
		})
		return nil
	case DeactivatedByUser:
		u.state = ActiveWithUnverifiedEmail{Email: s.Email}
		u.updatedAt = now
		u.record(UserReactivated{
			UserID:        u.id,
			Username:      u.username,
			Email:         s.Email.Address(),
			ReactivatedAt: now,
		})
		return nil
	default:
		return ErrInvalidTransition
	}
}

// PromoteToAdmin is the supplemented admin-management operation (§5 of
// SPEC_FULL): idempotent if already admin, otherwise moves role forward
// only, per I-U5. The idempotent call still emits UserPromotedToAdmin, for
// the same totality reason as the state transitions above (spec.md §8 P6).
func (u *User) PromoteToAdmin(now time.Time) error {
	if u.role == RoleAdmin {
		u.updatedAt = now
		u.record(UserPromotedToAdmin{UserID: u.id, PromotedAt: now})
		return nil
	}
	u.role = RoleAdmin
	u.updatedAt = now
	u.record(UserPromotedToAdmin{UserID: u.id, PromotedAt: now})
	return nil
}
