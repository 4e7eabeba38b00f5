// Package config holds the application configuration and an atomic
// Provider for hot-swapping it, following the teacher's config.Provider
// pattern (config/config.go in the original). Values are seeded from an
// embedded TOML default and overridden by environment variables, the way
// the teacher's Load combines BurntSushi/toml with os.Getenv.
package config

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/toml"
)

// Provider holds the current *Config and allows atomic hot-swaps (e.g. on
// SIGHUP).
type Provider struct {
	value atomic.Value
}

func NewProvider(c *Config) *Provider {
	if c == nil {
		panic("config: initial config cannot be nil")
	}
	p := &Provider{}
	p.value.Store(c)
	return p
}

func (p *Provider) Get() *Config {
	return p.value.Load().(*Config)
}

func (p *Provider) Update(newConfig *Config) {
	p.value.Store(newConfig)
}

const (
	EnvSmtpUsername    = "SMTP_USERNAME"
	EnvSmtpPassword    = "SMTP_PASSWORD"
	EnvJwtAuthSecret   = "JWT_AUTH_SECRET"
	EnvJwtVerifySecret = "JWT_VERIFICATION_SECRET"
	EnvJwtResetSecret  = "JWT_PASSWORD_RESET_SECRET"
	EnvDiscordWebhook  = "DISCORD_WEBHOOK_URL"
)

type Jwt struct {
	AuthSecret                     []byte
	AuthTokenDuration              time.Duration
	VerificationEmailSecret        []byte
	VerificationEmailTokenDuration time.Duration
	PasswordResetSecret            []byte
	PasswordResetTokenDuration     time.Duration
	EmailChangeSecret              []byte
	EmailChangeTokenDuration       time.Duration
}

type Smtp struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
	LocalName   string
	AuthMethod  string // "plain", "login", "cram-md5", or "none"
	UseTLS      bool
	UseStartTLS bool
}

// Relay tunes the C9 relay worker, paralleling the teacher's Scheduler
// struct.
type Relay struct {
	Interval      time.Duration
	BatchSize     int
	MaxRetries    int
	BaseFactor    float64
	MaxFactor     float64
	BaseDelay     time.Duration
	JitterMax     time.Duration
	LeaseDuration time.Duration
}

type RateLimits struct {
	PasswordResetCooldown     time.Duration
	EmailVerificationCooldown time.Duration
	EmailChangeCooldown       time.Duration
}

type Server struct {
	Addr                    string
	ShutdownGracefulTimeout time.Duration
	ReadTimeout             time.Duration
	ReadHeaderTimeout       time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	ClientIpProxyHeader     string
	EnableTLS               bool
	CertFile                string
	KeyFile                 string
	CertData                string
	KeyData                 string
	RedirectAddr            string
}

// BaseURL returns scheme://host:port, defaulting host to localhost and
// scheme to http for localhost (teacher's config.Server.BaseURL).
func (s *Server) BaseURL() string {
	host, port, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return s.Addr
	}
	if host == "" {
		host = "localhost"
	}
	scheme := "https"
	if host == "localhost" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%s", scheme, host, port)
}

// Discord configures the operational-alert notifier (permanently_failed
// envelopes).
type Discord struct {
	Enabled      bool
	WebhookURL   string
	APIRateLimit time.Duration
	APIBurst     int
	SendTimeout  time.Duration
}

// Recognized values for Config.DBDriver.
const (
	DBDriverZombiezen = "zombiezen"
	DBDriverCrawshaw  = "crawshaw"
)

type Config struct {
	DBFile     string
	DBDriver   string
	Jwt        Jwt
	Server     Server
	RateLimits RateLimits
	Smtp       Smtp
	Relay      Relay
	Discord    Discord
	Backup     Backup
	LoginGuard LoginGuard
	Export     Export
}

// Export configures the age-encrypted account-data export endpoint
// (security/export). RecipientPublicKey is an age X25519 recipient string
// (age1...); requests are rejected while it is empty.
type Export struct {
	RecipientPublicKey string
}

// Backup tunes the continuous litestream replication daemon (backup/litestream.go).
type Backup struct {
	Enabled     bool
	ReplicaPath string
	ReplicaName string
}

// LoginGuard tunes the sliding-window top-k sketch that tracks
// failed-login volume per client IP (security/loginguard).
type LoginGuard struct {
	Enabled         bool
	K               int
	WindowSize      int
	Width           int
	Depth           int
	TickSize        uint64
	MaxSharePercent int
	ActivationRPS   int
}

const (
	DefaultReadTimeout       = 2 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultWriteTimeout      = 3 * time.Second
	DefaultIdleTimeout       = 1 * time.Minute
	DefaultShutdownTimeout   = 15 * time.Second
)

//go:embed config.toml
var defaultConfigToml []byte

// Load seeds a Config from the embedded default TOML, then overrides
// secrets and SMTP credentials from the environment.
func Load(dbfile string) (*Config, error) {
	cfg := NewDefaultConfig()

	if _, err := toml.Decode(string(defaultConfigToml), cfg); err != nil {
		return nil, fmt.Errorf("config: decode embedded default config: %w", err)
	}
	cfg.DBFile = dbfile

	if v := os.Getenv(EnvJwtAuthSecret); v != "" {
		cfg.Jwt.AuthSecret = []byte(v)
	}
	if v := os.Getenv(EnvJwtVerifySecret); v != "" {
		cfg.Jwt.VerificationEmailSecret = []byte(v)
	}
	if v := os.Getenv(EnvJwtResetSecret); v != "" {
		cfg.Jwt.PasswordResetSecret = []byte(v)
	}
	if v := os.Getenv(EnvSmtpUsername); v != "" {
		cfg.Smtp.Username = v
	}
	if v := os.Getenv(EnvSmtpPassword); v != "" {
		cfg.Smtp.Password = v
	}
	if v := os.Getenv(EnvDiscordWebhook); v != "" {
		cfg.Discord.WebhookURL = v
		cfg.Discord.Enabled = true
	}

	return cfg, nil
}
