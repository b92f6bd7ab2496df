package repo

import (
	"os"
	"testing"
)

func TestReadConfigDefaults(t *testing.T) {
	r := initTestRepo(t)
	if err := os.Remove(r.configPath()); err != nil {
		t.Fatalf("remove config: %v", err)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Core.DefaultBranch != "master" {
		t.Errorf("default branch = %q", cfg.Core.DefaultBranch)
	}
	if cfg.Author() != "" {
		t.Errorf("default author = %q, want empty", cfg.Author())
	}
}

func TestConfigRoundTrip(t *testing.T) {
	r := initTestRepo(t)

	cfg, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	cfg.User.Name = "Ada Lovelace"
	cfg.User.Email = "ada@example.com"
	if err := r.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	back, err := r.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if back.User.Name != "Ada Lovelace" || back.User.Email != "ada@example.com" {
		t.Errorf("user = %+v", back.User)
	}
	if back.Author() != "Ada Lovelace <ada@example.com>" {
		t.Errorf("Author() = %q", back.Author())
	}
}

func TestAuthorFormatting(t *testing.T) {
	c := &Config{}
	if c.Author() != "" {
		t.Errorf("empty identity: %q", c.Author())
	}
	c.User.Name = "Ada"
	if c.Author() != "Ada" {
		t.Errorf("name only: %q", c.Author())
	}
	c.User.Email = "ada@example.com"
	if c.Author() != "Ada <ada@example.com>" {
		t.Errorf("full identity: %q", c.Author())
	}
}
