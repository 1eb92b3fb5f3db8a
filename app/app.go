// app/app.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/eventdesk/config"
	"github.com/dalemusser/eventdesk/logging"
	"github.com/dalemusser/eventdesk/metrics"
	"github.com/dalemusser/eventdesk/server"
	"go.uber.org/zap"
)

// Hooks are the pieces a service supplies to Run. C is the service's
// config type and D whatever ConnectDB hands to the later hooks.
type Hooks[C any, D any] struct {
	// Name appears in startup logs.
	Name string

	LoadConfig func(logger *zap.Logger) (*config.CoreConfig, C, error)

	// ConnectDB should respect core.DBConnectTimeout.
	ConnectDB func(ctx context.Context, core *config.CoreConfig, appCfg C, logger *zap.Logger) (D, error)

	// EnsureSchema is optional. It runs with core.IndexBootTimeout.
	EnsureSchema func(ctx context.Context, core *config.CoreConfig, appCfg C, db D, logger *zap.Logger) error

	BuildHandler func(core *config.CoreConfig, appCfg C, db D, logger *zap.Logger) (http.Handler, error)

	// Shutdown is optional. It runs after the HTTP server stops, with
	// core.HTTP.ShutdownTimeout, to drain workers and close connections.
	Shutdown func(ctx context.Context, db D, logger *zap.Logger) error
}

// Run starts a service: config, logger, metrics, backends, schema,
// handler, then the server. It blocks until ctx is canceled or a signal
// arrives, and returns the first startup or serve error.
func Run[C any, D any](ctx context.Context, hooks Hooks[C, D]) error {
	bootstrap := logging.BootstrapLogger()
	defer func() { _ = bootstrap.Sync() }()

	coreCfg, appCfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.MustBuildLogger(coreCfg.LogLevel, coreCfg.Env)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("app", hooks.Name),
		zap.String("env", coreCfg.Env),
		zap.String("log_level", coreCfg.LogLevel))

	metrics.RegisterDefault(logger)

	db, err := hooks.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		logger.Error("backend connect failed", zap.Error(err))
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if hooks.Shutdown == nil {
			return
		}
		sctx, cancel := context.WithTimeout(context.Background(), shutdownWindow(coreCfg))
		defer cancel()
		if err := hooks.Shutdown(sctx, db, logger); err != nil {
			logger.Warn("shutdown hook failed", zap.Error(err))
		}
	}()

	if hooks.EnsureSchema != nil {
		schemaCtx, cancel := context.WithTimeout(ctx, coreCfg.IndexBootTimeout)
		err := hooks.EnsureSchema(schemaCtx, coreCfg, appCfg, db, logger)
		cancel()
		if err != nil {
			logger.Error("schema setup failed", zap.Error(err))
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	handler, err := hooks.BuildHandler(coreCfg, appCfg, db, logger)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		return fmt.Errorf("build handler: %w", err)
	}

	if err := server.ListenAndServeWithContext(ctx, coreCfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func shutdownWindow(cfg *config.CoreConfig) time.Duration {
	if cfg.HTTP.ShutdownTimeout > 0 {
		return cfg.HTTP.ShutdownTimeout
	}
	return 10 * time.Second
}
