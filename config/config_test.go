package config

import "testing"

func TestNewDefaultConfig_PassesValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestProvider_GetReturnsStoredConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	p := NewProvider(cfg)
	if p.Get() != cfg {
		t.Fatalf("expected Get to return the stored config pointer")
	}

	updated := NewDefaultConfig()
	updated.Server.Addr = ":9090"
	p.Update(updated)
	if p.Get().Server.Addr != ":9090" {
		t.Fatalf("expected Update to swap in new config")
	}
}

func TestServer_BaseURL(t *testing.T) {
	s := &Server{Addr: "localhost:8080"}
	if got := s.BaseURL(); got != "http://localhost:8080" {
		t.Fatalf("unexpected base url: %s", got)
	}
}
