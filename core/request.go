package core

import (
	"fmt"
	"net"
	"net/http"
	"net/mail"
	"strings"
)

// ValidateEmail checks if an email address is valid according to RFC 5322
// Returns nil if valid, or an error describing why the email is invalid
func ValidateEmail(email string) error {
	_, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// GetClientIP returns the originating client IP for r. When the server is
// configured with a ClientIpProxyHeader (running behind a reverse proxy or
// load balancer), the first address in that header is used; otherwise it
// falls back to the TCP peer address.
func (a *App) GetClientIP(r *http.Request) string {
	if header := a.Config().Server.ClientIpProxyHeader; header != "" {
		if v := r.Header.Get(header); v != "" {
			ip := strings.TrimSpace(strings.Split(v, ",")[0])
			if ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

