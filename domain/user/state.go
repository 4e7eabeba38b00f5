package user

// UserState is a sealed sum type over the lifecycle states a User can be in.
// Modeled as an interface with an unexported marker method rather than a
// status enum + booleans, per the no-boolean-flags design note: every
// variant that needs data (the email at the time of that state) carries it
// directly instead of living alongside a pile of independent bools.
type UserState interface {
	isUserState()
	// Tag returns the wire/DB discriminator string for this variant.
	Tag() string
}

// PendingVerification is the state a freshly signed-up user starts in.
type PendingVerification struct {
	Email Email
}

func (PendingVerification) isUserState() {}
func (PendingVerification) Tag() string  { return "pending_verification" }

// ActiveWithUnverifiedEmail is reached after an email change or after a
// suspension is lifted; the user can act but the email still needs
// verification.
type ActiveWithUnverifiedEmail struct {
	Email Email
}

func (ActiveWithUnverifiedEmail) isUserState() {}
func (ActiveWithUnverifiedEmail) Tag() string  { return "active_with_unverified_email" }

// Active is the only state in which Email is guaranteed to be Verified.
type Active struct {
	Email Email
}

func (Active) isUserState() {}
func (Active) Tag() string  { return "active" }

// SuspendedByAdmin holds the email at suspension time, always demoted to
// unverified.
type SuspendedByAdmin struct {
	Email  Email
	Reason string
}

func (SuspendedByAdmin) isUserState() {}
func (SuspendedByAdmin) Tag() string  { return "suspended_by_admin" }

// DeactivatedByUser is reached only from Active.
type DeactivatedByUser struct {
	Email Email
}

func (DeactivatedByUser) isUserState() {}
func (DeactivatedByUser) Tag() string  { return "deactivated_by_user" }

// emailOf extracts the Email carried by any UserState variant.
func emailOf(s UserState) Email {
	switch v := s.(type) {
	case PendingVerification:
		return v.Email
	case ActiveWithUnverifiedEmail:
		return v.Email
	case Active:
		return v.Email
	case SuspendedByAdmin:
		return v.Email
	case DeactivatedByUser:
		return v.Email
	default:
		return nil
	}
}

// StateFromTag reconstructs a zero-value UserState variant from its DB tag
// string and the email it should carry. Used by the repository mapper; an
// unknown tag is the caller's ErrUnknownStatus.
func StateFromTag(tag string, email Email, reason string) (UserState, error) {
	switch tag {
	case "pending_verification":
		return PendingVerification{Email: email}, nil
	case "active_with_unverified_email":
		return ActiveWithUnverifiedEmail{Email: email}, nil
	case "active":
		return Active{Email: email}, nil
	case "suspended_by_admin":
		return SuspendedByAdmin{Email: email, Reason: reason}, nil
	case "deactivated_by_user":
		return DeactivatedByUser{Email: email}, nil
	default:
		return nil, ErrUnknownStatus
	}
}
