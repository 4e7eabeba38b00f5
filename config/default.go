package config

import (
	"time"

	"github.com/caasmo/identityoutbox/crypto"
)

// NewDefaultConfig returns a Config with sensible defaults and randomly
// generated secrets, mirroring the teacher's NewDefaultConfig.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile:   "app.db",
		DBDriver: DBDriverZombiezen,
		Jwt: Jwt{
			AuthSecret:                     []byte(crypto.GenerateSecureToken(32)),
			AuthTokenDuration:              45 * time.Minute,
			VerificationEmailSecret:        []byte(crypto.GenerateSecureToken(32)),
			VerificationEmailTokenDuration: 24 * time.Hour,
			PasswordResetSecret:            []byte(crypto.GenerateSecureToken(32)),
			PasswordResetTokenDuration:     1 * time.Hour,
			EmailChangeSecret:              []byte(crypto.GenerateSecureToken(32)),
			EmailChangeTokenDuration:       1 * time.Hour,
		},
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: DefaultShutdownTimeout,
			ReadTimeout:             DefaultReadTimeout,
			ReadHeaderTimeout:       DefaultReadHeaderTimeout,
			WriteTimeout:            DefaultWriteTimeout,
			IdleTimeout:             DefaultIdleTimeout,
		},
		RateLimits: RateLimits{
			PasswordResetCooldown:     2 * time.Hour,
			EmailVerificationCooldown: 1 * time.Hour,
			EmailChangeCooldown:       1 * time.Hour,
		},
		Smtp: Smtp{
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "identityoutbox",
			AuthMethod:  "plain",
			UseStartTLS: true,
		},
		Relay: Relay{
			Interval:      5 * time.Second,
			BatchSize:     20,
			MaxRetries:    8,
			BaseFactor:    2,
			MaxFactor:     64,
			BaseDelay:     5 * time.Second,
			JitterMax:     500 * time.Millisecond,
			LeaseDuration: 30 * time.Second,
		},
		Discord: Discord{
			APIRateLimit: 2 * time.Second,
			APIBurst:     5,
			SendTimeout:  10 * time.Second,
		},
		Backup: Backup{
			ReplicaPath: "./backup",
			ReplicaName: "identityoutbox",
		},
		LoginGuard: LoginGuard{
			K:               50,
			WindowSize:      10,
			Width:           1024,
			Depth:           4,
			TickSize:        100,
			MaxSharePercent: 35,
			ActivationRPS:   50,
		},
	}
}
