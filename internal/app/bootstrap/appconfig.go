// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/eventdesk/campus"
	"github.com/dalemusser/eventdesk/config"
	"github.com/dalemusser/eventdesk/mailer"
)

// AppConfig holds the event desk's own settings.
type AppConfig struct {
	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	// Admin* seed the first administrator on an empty database.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// SMTP.Host empty means mail is logged instead of sent.
	SMTP        mailer.SMTPConfig
	MailWorkers int

	LeadDays      int
	EventsPerPage int
}

var appKeys = []config.AppKey{
	{Name: "db_driver", Default: "sqlite", Desc: "Database driver: sqlite, mysql or postgres"},
	{Name: "db_dsn", Default: "eventdesk.db", Desc: "Database DSN, or a file path for sqlite"},
	{Name: "jwt_secret", Default: "", Desc: "HMAC secret for session tokens (required in prod)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Session lifetime"},
	{Name: "admin_email", Default: "", Desc: "Administrator seeded at startup"},
	{Name: "admin_password", Default: "", Desc: "Password for the seeded administrator"},
	{Name: "admin_name", Default: "Administrator", Desc: "Name for the seeded administrator"},
	{Name: "smtp_host", Default: "", Desc: "SMTP relay host; empty logs mail instead"},
	{Name: "smtp_port", Default: 587, Desc: "SMTP relay port (465 for implicit TLS)"},
	{Name: "smtp_username", Default: "", Desc: "SMTP username"},
	{Name: "smtp_password", Default: "", Desc: "SMTP password"},
	{Name: "smtp_from", Default: "", Desc: "Sender address"},
	{Name: "smtp_from_name", Default: "Event Desk", Desc: "Sender display name"},
	{Name: "smtp_timeout", Default: "30s", Desc: "Per-message SMTP timeout"},
	{Name: "mail_workers", Default: 2, Desc: "Background mail senders"},
	{Name: "registration_lead_days", Default: campus.DefaultLeadDays, Desc: "Days before an event that registration and cancellation close"},
	{Name: "events_per_page", Default: campus.DefaultEventsPerPage, Desc: "Events per listing page"},
}

var errNoSecret = errors.New("jwt_secret is required when env is prod")

// appConfigFrom maps loaded values onto AppConfig and checks them against
// the core environment.
func appConfigFrom(env string, vals config.AppConfigValues) (AppConfig, error) {
	cfg := AppConfig{
		DBDriver:      strings.ToLower(strings.TrimSpace(vals.String("db_driver"))),
		DBDSN:         strings.TrimSpace(vals.String("db_dsn")),
		JWTSecret:     vals.String("jwt_secret"),
		JWTTTL:        vals.Duration("jwt_ttl", 24*time.Hour),
		AdminEmail:    strings.TrimSpace(vals.String("admin_email")),
		AdminPassword: vals.String("admin_password"),
		AdminName:     strings.TrimSpace(vals.String("admin_name")),
		SMTP: mailer.SMTPConfig{
			Host:     strings.TrimSpace(vals.String("smtp_host")),
			Port:     vals.Int("smtp_port"),
			Username: vals.String("smtp_username"),
			Password: vals.String("smtp_password"),
			From:     strings.TrimSpace(vals.String("smtp_from")),
			FromName: vals.String("smtp_from_name"),
			Timeout:  vals.Duration("smtp_timeout", 30*time.Second),
		},
		MailWorkers:   vals.Int("mail_workers"),
		LeadDays:      vals.Int("registration_lead_days"),
		EventsPerPage: vals.Int("events_per_page"),
	}

	if cfg.DBDSN == "" {
		return cfg, errors.New("db_dsn is required")
	}
	if cfg.JWTSecret == "" && env == "prod" {
		return cfg, errNoSecret
	}
	if cfg.SMTP.Host != "" && cfg.SMTP.From == "" {
		return cfg, errors.New("smtp_from is required with smtp_host")
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		return cfg, errors.New("admin_password is required with admin_email")
	}
	return cfg, nil
}
