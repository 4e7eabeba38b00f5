package user

// Email is a sum type: an address is either verified or unverified. Only
// Active carries a Verified address; every other state carries Unverified.
type Email interface {
	isEmail()
	Address() string
}

type VerifiedEmail struct {
	address string
}

func NewVerifiedEmail(address string) VerifiedEmail { return VerifiedEmail{address: address} }

func (VerifiedEmail) isEmail()            {}
func (e VerifiedEmail) Address() string   { return e.address }

type UnverifiedEmail struct {
	address string
}

func NewUnverifiedEmail(address string) UnverifiedEmail { return UnverifiedEmail{address: address} }

func (UnverifiedEmail) isEmail()          {}
func (e UnverifiedEmail) Address() string { return e.address }

// demote returns the Unverified form of e, preserving its address.
func demote(e Email) Email {
	return UnverifiedEmail{address: e.Address()}
}
