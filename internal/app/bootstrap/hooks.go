// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dalemusser/eventdesk/app"
	"github.com/dalemusser/eventdesk/auth"
	"github.com/dalemusser/eventdesk/campus"
	"github.com/dalemusser/eventdesk/config"
	"github.com/dalemusser/eventdesk/health"
	"github.com/dalemusser/eventdesk/httputil"
	"github.com/dalemusser/eventdesk/mailer"
	"github.com/dalemusser/eventdesk/metrics"
	"github.com/dalemusser/eventdesk/router"
	"github.com/dalemusser/eventdesk/store"
	"github.com/dalemusser/eventdesk/web"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// LoadConfig loads core config and the event desk's keys.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, vals, err := config.LoadWithAppConfig(logger, pflag.CommandLine, os.Args[1:], appKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}
	appCfg, err := appConfigFrom(coreCfg.Env, vals)
	if err != nil {
		return nil, AppConfig{}, err
	}
	if appCfg.JWTSecret == "" {
		// Sessions will not survive a restart.
		appCfg.JWTSecret = uuid.NewString()
		logger.Warn("jwt_secret not set; using a random secret")
	}
	return coreCfg, appCfg, nil
}

// ConnectDB opens the store and starts the mail workers.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	cctx, cancel := context.WithTimeout(ctx, coreCfg.DBConnectTimeout)
	defer cancel()

	st, err := store.Open(cctx, appCfg.DBDriver, appCfg.DBDSN)
	if err != nil {
		return DBDeps{}, err
	}
	logger.Info("database connected", zap.String("driver", appCfg.DBDriver))

	var t mailer.Transport = mailer.LogTransport{Logger: logger}
	if appCfg.SMTP.Host != "" {
		t = mailer.NewSMTPTransport(appCfg.SMTP)
		logger.Info("mail via smtp", zap.String("host", appCfg.SMTP.Host), zap.Int("port", appCfg.SMTP.Port))
	} else {
		logger.Info("smtp_host not set; mail will be logged")
	}
	q := mailer.NewQueue(t, logger, mailer.QueueConfig{Workers: appCfg.MailWorkers})
	q.Start()

	return DBDeps{Store: st, Mail: q}, nil
}

// EnsureSchema creates the tables and seeds the administrator.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := deps.Store.EnsureSchema(ctx); err != nil {
		return err
	}
	seeder := campus.New(deps.Store, nil, nil, logger)
	if err := seeder.SeedAdmin(ctx, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminName); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// BuildHandler wires the router, health, metrics and the desk itself.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	httputil.SetLogger(logger)

	tokens, err := auth.NewIssuer(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	var opts []campus.Option
	if appCfg.LeadDays > 0 {
		opts = append(opts, campus.WithLeadDays(appCfg.LeadDays))
	}
	if appCfg.EventsPerPage > 0 {
		opts = append(opts, campus.WithEventsPerPage(appCfg.EventsPerPage))
	}
	svc := campus.New(deps.Store, deps.Mail, tokens, logger, opts...)

	desk, err := web.New(svc, tokens, logger, web.WithSecureCookie(coreCfg.HTTP.UseHTTPS))
	if err != nil {
		return nil, err
	}

	r := router.New(coreCfg, logger)
	health.Mount(r, map[string]health.Check{"db": deps.Store.Ping}, logger)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	desk.Mount(r)
	return r, nil
}

// Shutdown drains queued mail, then closes the database.
func Shutdown(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	var errs []error
	if deps.Mail != nil {
		if err := deps.Mail.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mail queue: %w", err))
		}
	}
	if deps.Store != nil {
		if err := deps.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	logger.Info("backends closed")
	return errors.Join(errs...)
}

// Hooks wires the event desk into the app lifecycle.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:         "eventdesk",
	LoadConfig:   LoadConfig,
	ConnectDB:    ConnectDB,
	EnsureSchema: EnsureSchema,
	BuildHandler: BuildHandler,
	Shutdown:     Shutdown,
}
