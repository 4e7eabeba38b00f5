package user_test

import (
	"testing"
	"time"

	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/google/uuid"
)

func newUser(t *testing.T, state user.UserState) *user.User {
	t.Helper()
	u := user.Reconstruct(uuid.Must(uuid.NewV7()), "alice", "hash", user.RoleUser, time.Now(), time.Now(), state)
	return u
}

func TestNew_QueuesUserCreated(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()
	u := user.New(id, "alice", "alice@example.com", "hash", now)

	events := u.DrainEvents()
	if len(events) != 1 {
		t.Fatalf("expected exactly one queued event, got %d", len(events))
	}
	created, ok := events[0].(user.UserCreated)
	if !ok {
		t.Fatalf("expected UserCreated, got %T", events[0])
	}
	if created.Username != "alice" || created.Email != "alice@example.com" {
		t.Errorf("unexpected UserCreated payload: %+v", created)
	}

	if len(u.DrainEvents()) != 0 {
		t.Errorf("DrainEvents should clear the buffer")
	}
}

func TestSuspend_IsIdempotentAndDemotesEmail(t *testing.T) {
	u := newUser(t, user.Active{Email: user.NewVerifiedEmail("alice@example.com")})

	if err := u.Suspend("abuse", time.Now()); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, ok := u.State().(user.SuspendedByAdmin); !ok {
		t.Fatalf("expected SuspendedByAdmin, got %T", u.State())
	}
	if _, ok := u.Email().(user.UnverifiedEmail); !ok {
		t.Fatalf("expected email demoted to unverified, got %T", u.Email())
	}
	u.DrainEvents()

	// idempotent: suspending an already-suspended user stays in
	// SuspendedByAdmin, but still queues a fresh UserSuspended (spec.md
	// §8 P6: no silent no-op transition).
	if err := u.Suspend("abuse again", time.Now()); err != nil {
		t.Fatalf("second suspend should be idempotent: %v", err)
	}
	events := u.DrainEvents()
	if len(events) != 1 {
		t.Fatalf("expected exactly one UserSuspended on the idempotent call, got %d", len(events))
	}
	if _, ok := events[0].(user.UserSuspended); !ok {
		t.Errorf("expected UserSuspended, got %T", events[0])
	}
}

func TestUnlockSuspension_OnlyLegalFromSuspended(t *testing.T) {
	u := newUser(t, user.Active{Email: user.NewVerifiedEmail("alice@example.com")})
	if err := u.UnlockSuspension(time.Now()); err != user.ErrNotSuspended {
		t.Fatalf("expected ErrNotSuspended, got %v", err)
	}

	u2 := newUser(t, user.SuspendedByAdmin{Email: user.NewUnverifiedEmail("alice@example.com"), Reason: "r"})
	if err := u2.UnlockSuspension(time.Now()); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, ok := u2.State().(user.ActiveWithUnverifiedEmail); !ok {
		t.Fatalf("expected ActiveWithUnverifiedEmail, got %T", u2.State())
	}
}

func TestDeactivate_RejectsUnverifiedAndSuspended(t *testing.T) {
	cases := []struct {
		name    string
		state   user.UserState
		wantErr error
	}{
		{"pending", user.PendingVerification{Email: user.NewUnverifiedEmail("a@example.com")}, user.ErrNotVerified},
		{"active_unverified_email", user.ActiveWithUnverifiedEmail{Email: user.NewUnverifiedEmail("a@example.com")}, user.ErrNotVerified},
		{"suspended", user.SuspendedByAdmin{Email: user.NewUnverifiedEmail("a@example.com"), Reason: "r"}, user.ErrAlreadySuspended},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := newUser(t, c.state)
			if err := u.Deactivate(time.Now()); err != c.wantErr {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestDeactivate_FromActiveThenIdempotent(t *testing.T) {
	u := newUser(t, user.Active{Email: user.NewVerifiedEmail("alice@example.com")})
	if err := u.Deactivate(time.Now()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, ok := u.State().(user.DeactivatedByUser); !ok {
		t.Fatalf("expected DeactivatedByUser, got %T", u.State())
	}
	u.DrainEvents()

	// idempotent: still emits a fresh UserDeactivated (spec.md §8 P6).
	if err := u.Deactivate(time.Now()); err != nil {
		t.Fatalf("idempotent deactivate should not error: %v", err)
	}
	events := u.DrainEvents()
	if len(events) != 1 {
		t.Fatalf("expected exactly one UserDeactivated on the idempotent call, got %d", len(events))
	}
	if _, ok := events[0].(user.UserDeactivated); !ok {
		t.Errorf("expected UserDeactivated, got %T", events[0])
	}
}

func TestActivate_OnlyLegalFromDeactivated(t *testing.T) {
	u := newUser(t, user.PendingVerification{Email: user.NewUnverifiedEmail("a@example.com")})
	if err := u.Activate(time.Now()); err != user.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	u2 := newUser(t, user.DeactivatedByUser{Email: user.NewVerifiedEmail("a@example.com")})
	if err := u2.Activate(time.Now()); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, ok := u2.State().(user.ActiveWithUnverifiedEmail); !ok {
		t.Fatalf("expected ActiveWithUnverifiedEmail, got %T", u2.State())
	}

	u3 := newUser(t, user.Active{Email: user.NewVerifiedEmail("a@example.com")})
	// idempotent: still emits a fresh UserReactivated (spec.md §8 P6).
	if err := u3.Activate(time.Now()); err != nil {
		t.Fatalf("idempotent activate should not error: %v", err)
	}
	events := u3.DrainEvents()
	if len(events) != 1 {
		t.Fatalf("expected exactly one UserReactivated on the idempotent call, got %d", len(events))
	}
	if _, ok := events[0].(user.UserReactivated); !ok {
		t.Errorf("expected UserReactivated, got %T", events[0])
	}
}

func TestVerifyEmail_RejectsTerminalStates(t *testing.T) {
	for _, state := range []user.UserState{
		user.SuspendedByAdmin{Email: user.NewUnverifiedEmail("a@example.com"), Reason: "r"},
		user.DeactivatedByUser{Email: user.NewUnverifiedEmail("a@example.com")},
	} {
		u := newUser(t, state)
		if err := u.VerifyEmail(nil, time.Now()); err == nil {
			t.Errorf("expected an error verifying email from %T", state)
		}
	}
}

func TestVerifyEmail_PromotesPendingToActive(t *testing.T) {
	u := newUser(t, user.PendingVerification{Email: user.NewUnverifiedEmail("a@example.com")})
	if err := u.VerifyEmail(nil, time.Now()); err != nil {
		t.Fatalf("verify: %v", err)
	}
	active, ok := u.State().(user.Active)
	if !ok {
		t.Fatalf("expected Active, got %T", u.State())
	}
	if _, ok := active.Email.(user.VerifiedEmail); !ok {
		t.Fatalf("expected a verified email, got %T", active.Email)
	}
}

func TestVerifyEmail_IdempotentOnActiveStillEmitsEvent(t *testing.T) {
	u := newUser(t, user.Active{Email: user.NewVerifiedEmail("a@example.com")})
	if err := u.VerifyEmail(nil, time.Now()); err != nil {
		t.Fatalf("verify: %v", err)
	}
	events := u.DrainEvents()
	if len(events) != 1 {
		t.Fatalf("expected exactly one UserEmailVerified on the idempotent call, got %d", len(events))
	}
	if _, ok := events[0].(user.UserEmailVerified); !ok {
		t.Errorf("expected UserEmailVerified, got %T", events[0])
	}
}

func TestPromoteToAdmin_OnlyMovesForward(t *testing.T) {
	u := newUser(t, user.Active{Email: user.NewVerifiedEmail("a@example.com")})
	if err := u.PromoteToAdmin(time.Now()); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if u.Role() != user.RoleAdmin {
		t.Fatalf("expected RoleAdmin, got %s", u.Role())
	}
	u.DrainEvents()

	// idempotent: role stays admin, but a fresh UserPromotedToAdmin is
	// still queued (spec.md §8 P6).
	if err := u.PromoteToAdmin(time.Now()); err != nil {
		t.Fatalf("idempotent promote should not error: %v", err)
	}
	events := u.DrainEvents()
	if len(events) != 1 {
		t.Fatalf("expected exactly one UserPromotedToAdmin on the idempotent call, got %d", len(events))
	}
	if _, ok := events[0].(user.UserPromotedToAdmin); !ok {
		t.Errorf("expected UserPromotedToAdmin, got %T", events[0])
	}
}

func TestChangeEmail_RejectsTerminalStates(t *testing.T) {
	for _, state := range []user.UserState{
		user.SuspendedByAdmin{Email: user.NewUnverifiedEmail("a@example.com"), Reason: "r"},
		user.DeactivatedByUser{Email: user.NewUnverifiedEmail("a@example.com")},
	} {
		u := newUser(t, state)
		if err := u.ChangeEmail("new@example.com", time.Now()); err == nil {
			t.Errorf("expected an error changing email from %T", state)
		}
	}
}
