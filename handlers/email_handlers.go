package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/caasmo/identityoutbox/domain/user"
	"github.com/caasmo/identityoutbox/mail"
)

// emailHandler is the shape shared by every notification handler in this
// file: decode one event's payload, render a subject/body, call mail.Service.
type emailHandler struct {
	mailer  mail.Service
	to      string
	subject string
	body    string
}

func (h *emailHandler) Handle(ctx context.Context) error {
	return h.mailer.Send(ctx, h.to, h.subject, h.body)
}

// RegisterEmailHandlers wires the event-type -> handler-factory mapping
// spec.md's C7 table defines. UserPromotedToAdmin and UserEmailVerified
// intentionally register no factory's worth of handlers: their envelopes
// complete on lease with zero side effects.
func RegisterEmailHandlers(reg *Registry, mailer mail.Service) {
	reg.Register(user.UserCreated{}.EventType(), func(_ context.Context, payload json.RawMessage, _ Context) ([]Handler, error) {
		var ev user.UserCreated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("handlers: decode UserCreated: %w", err)
		}
		return []Handler{&emailHandler{
			mailer:  mailer,
			to:      ev.Email,
			subject: "Welcome",
			body:    fmt.Sprintf("<p>Welcome, %s. Your account has been created.</p>", ev.Username),
		}}, nil
	})

	reg.Register(user.UserSuspended{}.EventType(), func(_ context.Context, payload json.RawMessage, _ Context) ([]Handler, error) {
		var ev user.UserSuspended
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("handlers: decode UserSuspended: %w", err)
		}
		return []Handler{&emailHandler{
			mailer:  mailer,
			to:      ev.Email,
			subject: "Your account has been suspended",
			body:    fmt.Sprintf("<p>Hi %s, your account was suspended. Reason: %s</p>", ev.Username, ev.Reason),
		}}, nil
	})

	reg.Register(user.UserUnlocked{}.EventType(), func(_ context.Context, payload json.RawMessage, _ Context) ([]Handler, error) {
		var ev user.UserUnlocked
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("handlers: decode UserUnlocked: %w", err)
		}
		return []Handler{&emailHandler{
			mailer:  mailer,
			to:      ev.Email,
			subject: "Your account has been unlocked",
			body:    fmt.Sprintf("<p>Hi %s, your suspension has been lifted. Please verify your email to regain full access.</p>", ev.Username),
		}}, nil
	})

	reg.Register(user.UserDeactivated{}.EventType(), func(_ context.Context, payload json.RawMessage, _ Context) ([]Handler, error) {
		var ev user.UserDeactivated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("handlers: decode UserDeactivated: %w", err)
		}
		return []Handler{&emailHandler{
			mailer:  mailer,
			to:      ev.Email,
			subject: "Your account has been deactivated",
			body:    fmt.Sprintf("<p>Hi %s, your account has been deactivated at your request.</p>", ev.Username),
		}}, nil
	})

	reg.Register(user.UserReactivated{}.EventType(), func(_ context.Context, payload json.RawMessage, _ Context) ([]Handler, error) {
		var ev user.UserReactivated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("handlers: decode UserReactivated: %w", err)
		}
		return []Handler{&emailHandler{
			mailer:  mailer,
			to:      ev.Email,
			subject: "Welcome back",
			body:    fmt.Sprintf("<p>Hi %s, your account has been reactivated.</p>", ev.Username),
		}}, nil
	})

	reg.Register(user.UsernameChanged{}.EventType(), func(_ context.Context, payload json.RawMessage, _ Context) ([]Handler, error) {
		var ev user.UsernameChanged
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("handlers: decode UsernameChanged: %w", err)
		}
		return []Handler{&emailHandler{
			mailer:  mailer,
			to:      ev.Email,
			subject: "Your username has changed",
			body:    fmt.Sprintf("<p>Your username changed from %s to %s.</p>", ev.OldUsername, ev.NewUsername),
		}}, nil
	})

	reg.Register(user.UserEmailChanged{}.EventType(), func(_ context.Context, payload json.RawMessage, _ Context) ([]Handler, error) {
		var ev user.UserEmailChanged
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("handlers: decode UserEmailChanged: %w", err)
		}
		return []Handler{&emailHandler{
			mailer:  mailer,
			to:      ev.NewEmail,
			subject: "Confirm your new email address",
			body:    fmt.Sprintf("<p>Hi %s, please verify %s to keep using your account.</p>", ev.Username, ev.NewEmail),
		}}, nil
	})

	reg.Register(user.UserPromotedToAdmin{}.EventType(), func(_ context.Context, _ json.RawMessage, _ Context) ([]Handler, error) {
		return nil, nil
	})

	reg.Register(user.UserEmailVerified{}.EventType(), func(_ context.Context, _ json.RawMessage, _ Context) ([]Handler, error) {
		return nil, nil
	})
}
