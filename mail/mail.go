// Package mail sends outbound email via SMTP using mailyak, generalized
// from the teacher's single-purpose SendVerificationEmail into a generic
// Send the handlers package calls with event-specific subject/body.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"

	"github.com/caasmo/identityoutbox/config"
)

// Service is the email-sending collaborator handlers depend on.
type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailer implements Service over SMTP.
type Mailer struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	fromName    string
	authMethod  string
	useTLS      bool
	useStartTLS bool
}

var _ Service = (*Mailer)(nil)

// New creates a Mailer from the SMTP section of Config.
func New(cfg config.Smtp) *Mailer {
	return &Mailer{
		host:        cfg.Host,
		port:        cfg.Port,
		username:    cfg.Username,
		password:    cfg.Password,
		from:        cfg.FromAddress,
		fromName:    cfg.FromName,
		authMethod:  cfg.AuthMethod,
		useTLS:      cfg.UseTLS,
		useStartTLS: cfg.UseStartTLS,
	}
}

// Send delivers a single HTML email, aborting if ctx is done before the
// underlying SMTP round trip completes.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	var auth smtp.Auth
	switch m.authMethod {
	case "login":
		auth = &loginAuth{username: m.username, password: m.password}
	case "cram-md5":
		auth = smtp.CRAMMD5Auth(m.username, m.password)
	case "none":
		auth = nil
	default: // "plain" or empty
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	yak, err := mailyak.NewWithTLS(fmt.Sprintf("%s:%d", m.host, m.port), auth, &tls.Config{
		ServerName:         m.host,
		InsecureSkipVerify: !m.useTLS,
	})
	if err != nil {
		return fmt.Errorf("mail: create client: %w", err)
	}

	yak.To(to)
	yak.From(m.from)
	yak.FromName(m.fromName)
	yak.Subject(subject)
	yak.HTML().Set(body)

	done := make(chan error, 1)
	go func() { done <- yak.Send() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: send: %w", err)
		}
	}
	return nil
}

// loginAuth implements the SMTP AUTH LOGIN mechanism, which net/smtp does
// not provide directly.
type loginAuth struct {
	username string
	password string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch string(fromServer) {
	case "Username:":
		return []byte(a.username), nil
	case "Password:":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("mail: unexpected server challenge: %s", fromServer)
	}
}
