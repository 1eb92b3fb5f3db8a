package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

var testKeys = []AppKey{
	{Name: "db_driver", Default: "sqlite", Desc: "database driver"},
	{Name: "events_per_page", Default: 6, Desc: "events per page"},
	{Name: "jwt_secret", Default: "", Desc: "token signing secret"},
	{Name: "jwt_ttl", Default: "12h", Desc: "token lifetime"},
	{Name: "mail_enabled", Default: true, Desc: "send mail"},
}

func load(t *testing.T, args ...string) (*CoreConfig, AppConfigValues, error) {
	t.Helper()
	fs := pflag.NewFlagSet(t.Name(), pflag.ContinueOnError)
	return LoadWithAppConfig(nil, fs, args, testKeys)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, app, err := load(t)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.HTTPPort != 8080 {
		t.Errorf("http_port = %d, want 8080", cfg.HTTP.HTTPPort)
	}
	if cfg.DBConnectTimeout != 10*time.Second {
		t.Errorf("db_connect_timeout = %v, want 10s", cfg.DBConnectTimeout)
	}
	if cfg.HTTP.ShutdownTimeout != 15*time.Second {
		t.Errorf("shutdown_timeout = %v, want 15s", cfg.HTTP.ShutdownTimeout)
	}
	if !cfg.Security.EnableSecurityHeaders {
		t.Error("security headers should default on")
	}
	if got := app.String("db_driver"); got != "sqlite" {
		t.Errorf("db_driver = %q, want sqlite", got)
	}
	if got := app.Int("events_per_page"); got != 6 {
		t.Errorf("events_per_page = %d, want 6", got)
	}
	if got := app.Duration("jwt_ttl", time.Hour); got != 12*time.Hour {
		t.Errorf("jwt_ttl = %v, want 12h", got)
	}
	if !app.Bool("mail_enabled") {
		t.Error("mail_enabled should default true")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("EVENTDESK_HTTP_PORT", "9090")
	t.Setenv("EVENTDESK_EVENTS_PER_PAGE", "12")
	t.Setenv("EVENTDESK_DB_CONNECT_TIMEOUT", "3s")
	t.Setenv("EVENTDESK_ENABLE_CORS", "true")
	t.Setenv("EVENTDESK_CORS_ALLOWED_ORIGINS", `["https://desk.example"]`)
	t.Setenv("EVENTDESK_CORS_ALLOWED_METHODS", `["GET","POST"]`)

	cfg, app, err := load(t)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.HTTPPort != 9090 {
		t.Errorf("http_port = %d, want 9090", cfg.HTTP.HTTPPort)
	}
	if cfg.DBConnectTimeout != 3*time.Second {
		t.Errorf("db_connect_timeout = %v, want 3s", cfg.DBConnectTimeout)
	}
	if got := app.Int("events_per_page"); got != 12 {
		t.Errorf("events_per_page = %d, want 12", got)
	}
	if len(cfg.CORS.CORSAllowedOrigins) != 1 || cfg.CORS.CORSAllowedOrigins[0] != "https://desk.example" {
		t.Errorf("cors_allowed_origins = %v", cfg.CORS.CORSAllowedOrigins)
	}
}

func TestLoad_FlagsBeatEnv(t *testing.T) {
	t.Setenv("EVENTDESK_HTTP_PORT", "9090")
	t.Setenv("EVENTDESK_DB_DRIVER", "mysql")

	cfg, app, err := load(t, "--http_port=7070", "--db_driver=postgres")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.HTTPPort != 7070 {
		t.Errorf("http_port = %d, want 7070", cfg.HTTP.HTTPPort)
	}
	if got := app.String("db_driver"); got != "postgres" {
		t.Errorf("db_driver = %q, want postgres", got)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	_, _, err := load(t, "--env=staging", "--use_https=true")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{`env must be "dev" or "prod"`, "EVENTDESK_CERT_FILE"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestLoad_BadCORSList(t *testing.T) {
	t.Setenv("EVENTDESK_CORS_ALLOWED_ORIGINS", "not-json")
	if _, _, err := load(t); err == nil {
		t.Fatal("expected error for non-JSON list")
	}
}

func TestAppConfigValues_Redacted(t *testing.T) {
	vals := AppConfigValues{"jwt_secret": "s3cr3t", "smtp_password": "pw", "db_dsn": "user:pw@/db", "db_driver": "mysql"}
	red := vals.Redacted()
	for _, k := range []string{"jwt_secret", "smtp_password", "db_dsn"} {
		if red[k] != "[REDACTED]" {
			t.Errorf("%s not redacted: %v", k, red[k])
		}
	}
	if red["db_driver"] != "mysql" {
		t.Errorf("db_driver = %v, want mysql", red["db_driver"])
	}
}

func TestParseDurationFlexible(t *testing.T) {
	tests := []struct {
		in      any
		want    time.Duration
		wantErr bool
	}{
		{"90s", 90 * time.Second, false},
		{"120", 120 * time.Second, false},
		{30, 30 * time.Second, false},
		{int64(5), 5 * time.Second, false},
		{1.5, 1500 * time.Millisecond, false},
		{"", time.Minute, false},
		{nil, time.Minute, false},
		{"soon", time.Minute, true},
		{"-5s", time.Minute, true},
		{0, time.Minute, true},
	}
	for _, tt := range tests {
		got, err := parseDurationFlexible(tt.in, time.Minute)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDurationFlexible(%v) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseDurationFlexible(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
