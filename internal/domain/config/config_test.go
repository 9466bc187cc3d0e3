package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	domainerr "zazasite/internal/domain/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	data := []byte(`site:
  title: Zaza Teach
build:
  content_dir: posts
resources:
  workers: 4
  pdf_timeout: 30s
trends:
  enabled: true
  feeds:
    - https://example.com/feed.xml
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ZAZA_SERVER_ADDR", ":9090")
	t.Setenv("CRON_SECRET", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Title != "Zaza Teach" {
		t.Errorf("title = %q", cfg.Site.Title)
	}
	if cfg.Site.Company != "Zaza Technologies" {
		t.Errorf("company default lost: %q", cfg.Site.Company)
	}
	if cfg.Build.ContentDir != "posts" {
		t.Errorf("content_dir = %q", cfg.Build.ContentDir)
	}
	if cfg.Resources.Workers != 4 || cfg.Resources.PDFTimeout != 30*time.Second {
		t.Errorf("resources = %+v", cfg.Resources)
	}
	if len(cfg.Trends.Feeds) != 1 {
		t.Errorf("feeds = %v", cfg.Trends.Feeds)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("env override not applied: %q", cfg.Server.Addr)
	}
	if cfg.Secrets.CronSecret != "s3cret" {
		t.Errorf("secret = %q", cfg.Secrets.CronSecret)
	}
	if err := cfg.RequireCronSecret(); err != nil {
		t.Errorf("RequireCronSecret: %v", err)
	}
}

func TestLoadWithFlagOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadWith(path, func(v *viper.Viper) error {
		v.Set("server.addr", ":9999")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}

	_, err = LoadWith(path, func(*viper.Viper) error { return errors.New("bad flag") })
	if err == nil {
		t.Error("expected bind error")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Site.Title = " "
	cfg.Resources.PublicBase = "resources/"
	cfg.Trends.Feeds = []string{"not a url"}

	err := cfg.Validate()
	var ve domainerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, domainerr.ErrInvalid) {
		t.Errorf("expected ErrInvalid")
	}
	if len(ve.Items) != 4 {
		t.Errorf("items = %+v", ve.Items)
	}
}

func TestRequireCronSecret(t *testing.T) {
	cfg := Default()
	cfg.Trends.Enabled = true
	if err := cfg.RequireCronSecret(); err == nil {
		t.Fatal("expected error without secret")
	}
	cfg.Trends.Enabled = false
	if err := cfg.RequireCronSecret(); err != nil {
		t.Fatalf("disabled trends should not need a secret: %v", err)
	}
}
