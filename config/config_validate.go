package config

import "fmt"

// Validate performs basic sanity checks on a loaded Config, mirroring the
// teacher's config_validate.go but trimmed to the fields this domain keeps.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateJwt(&cfg.Jwt); err != nil {
		return err
	}
	if err := validateRelay(&cfg.Relay); err != nil {
		return err
	}
	return nil
}

func validateServer(s *Server) error {
	if s.Addr == "" {
		return fmt.Errorf("config: server.addr is required")
	}
	return nil
}

func validateJwt(j *Jwt) error {
	if len(j.AuthSecret) == 0 {
		return fmt.Errorf("config: jwt.auth_secret is required")
	}
	if j.AuthTokenDuration <= 0 {
		return fmt.Errorf("config: jwt.auth_token_duration must be positive")
	}
	return nil
}

func validateRelay(r *Relay) error {
	if r.BatchSize <= 0 {
		return fmt.Errorf("config: relay.batch_size must be positive")
	}
	if r.Interval <= 0 {
		return fmt.Errorf("config: relay.interval must be positive")
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("config: relay.max_retries cannot be negative")
	}
	return nil
}
