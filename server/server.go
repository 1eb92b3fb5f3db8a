// server/server.go
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dalemusser/eventdesk/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/acme/autocert"
)

// errInsecureKey marks a key file readable by group or others. It is fatal
// in prod and a warning in dev.
var errInsecureKey = errors.New("TLS key file has overly permissive permissions")

// WithShutdownSignals returns a context canceled on SIGINT or SIGTERM.
// The cancel func also stops signal delivery.
func WithShutdownSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			if logger != nil {
				logger.Info("shutdown signal received", zap.Stringer("signal", sig))
			}
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// ListenAndServeWithContext serves handler over plain HTTP, HTTPS with
// configured certificates, or HTTPS with Let's Encrypt (http-01), and
// blocks until ctx is canceled or a listener fails. In the HTTPS modes an
// auxiliary server on :80 redirects to HTTPS and answers ACME challenges.
func ListenAndServeWithContext(ctx context.Context, cfg *config.CoreConfig, handler http.Handler, logger *zap.Logger) error {
	if cfg == nil {
		return errors.New("server: cfg is nil")
	}
	if handler == nil {
		return errors.New("server: handler is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := newHTTPServer(cfg, handler, logger)

	if !cfg.HTTP.UseHTTPS {
		addr := ":" + strconv.Itoa(cfg.HTTP.HTTPPort)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen http %s: %w", addr, err)
		}
		logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
		return serve(ctx, cfg, logger, srv, ln, nil)
	}

	tlsCfg, aux, err := prepareTLS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	srv.TLSConfig = tlsCfg

	addr := ":" + strconv.Itoa(cfg.HTTP.HTTPSPort)
	baseLn, err := net.Listen("tcp", addr)
	if err != nil {
		_ = aux.Shutdown(context.Background())
		return fmt.Errorf("listen https %s: %w", addr, err)
	}
	logger.Info("HTTPS server listening",
		zap.String("addr", addr),
		zap.Bool("lets_encrypt", cfg.TLS.UseLetsEncrypt),
		zap.String("domain", cfg.TLS.Domain))
	return serve(ctx, cfg, logger, srv, tls.NewListener(baseLn, tlsCfg), aux)
}

func newHTTPServer(cfg *config.CoreConfig, handler http.Handler, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	if stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = stdlog
	}
	return srv
}

// prepareTLS builds the TLS config for the chosen mode and starts the :80
// auxiliary server.
func prepareTLS(ctx context.Context, cfg *config.CoreConfig, logger *zap.Logger) (*tls.Config, *http.Server, error) {
	if cfg.TLS.UseLetsEncrypt {
		m := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.TLS.Domain),
			Cache:      autocert.DirCache(cfg.TLS.LetsEncryptCacheDir),
			Email:      cfg.TLS.LetsEncryptEmail,
		}
		aux := newHTTPServer(cfg, m.HTTPHandler(RedirectHandler()), logger)
		aux.Addr = ":80"
		go runAux(aux, logger)

		if err := waitForCert(ctx, m, cfg.TLS.Domain, time.Minute); err != nil {
			logger.Warn("certificate not ready; first HTTPS requests may fail", zap.Error(err))
		}
		return &tls.Config{MinVersion: tls.VersionTLS12, GetCertificate: m.GetCertificate}, aux, nil
	}

	if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
		return nil, nil, errors.New("manual TLS selected but cert_file / key_file not provided")
	}
	if err := checkTLSFiles(cfg.TLS.CertFile, cfg.TLS.KeyFile); err != nil {
		if !errors.Is(err, errInsecureKey) || cfg.Env == "prod" {
			return nil, nil, err
		}
		logger.Warn("TLS key file permissions would be rejected in prod", zap.Error(err))
	}
	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load TLS cert/key: %w", err)
	}

	aux := newHTTPServer(cfg, RedirectHandler(), logger)
	aux.Addr = ":80"
	go runAux(aux, logger)

	return &tls.Config{MinVersion: tls.VersionTLS12, Certificates: []tls.Certificate{cert}}, aux, nil
}

// runAux serves the redirect server. Its failure is logged but does not
// take the primary listener down.
func runAux(aux *http.Server, logger *zap.Logger) {
	logger.Info("redirect server listening", zap.String("addr", aux.Addr))
	if err := aux.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("redirect server stopped", zap.Error(err))
	}
}

func serve(ctx context.Context, cfg *config.CoreConfig, logger *zap.Logger, srv *http.Server, ln net.Listener, aux *http.Server) error {
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
		// ctx is already done; shutdown gets its own window.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if aux != nil {
			_ = aux.Shutdown(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil

	case err := <-serveErr:
		if aux != nil {
			_ = aux.Shutdown(context.Background())
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

// RedirectHandler sends every request to the same host and path over
// HTTPS. Hosts or targets that could smuggle headers get a 400.
func RedirectHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.RequestURI()
		if !validHost(r.Host) || hasControl(uri) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "https://"+r.Host+uri, http.StatusMovedPermanently)
	})
}

func hasControl(s string) bool {
	for _, c := range s {
		if c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}

func validHost(host string) bool {
	if host == "" || hasControl(host) || strings.ContainsAny(host, "/\\ @") {
		return false
	}
	name := host
	bracketed := strings.HasPrefix(host, "[")
	if h, port, err := net.SplitHostPort(host); err == nil {
		n, perr := strconv.Atoi(port)
		if perr != nil || n <= 0 || n > 65535 {
			return false
		}
		name = h
	} else if bracketed {
		name = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	if name == "" {
		return false
	}
	if bracketed {
		if i := strings.IndexByte(name, '%'); i >= 0 {
			name = name[:i]
		}
		return net.ParseIP(name) != nil
	}
	return true
}

// checkTLSFiles verifies both files exist and the key is not group or
// world accessible (skipped on Windows).
func checkTLSFiles(certFile, keyFile string) error {
	for _, f := range []struct{ kind, path string }{{"certificate", certFile}, {"key", keyFile}} {
		info, err := os.Stat(f.path)
		if err != nil {
			return fmt.Errorf("TLS %s file %s: %w", f.kind, f.path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("TLS %s path is a directory: %s", f.kind, f.path)
		}
		if f.kind == "key" && runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
			return fmt.Errorf("%w: %s is %o, want 0600", errInsecureKey, f.path, info.Mode().Perm())
		}
	}
	return nil
}

// waitForCert polls autocert until it holds a certificate for host, the
// timeout passes, or ctx ends.
func waitForCert(ctx context.Context, m *autocert.Manager, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		_, err := m.GetCertificate(&tls.ClientHelloInfo{ServerName: host})
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for certificate for %q: %w (last error: %v)", host, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
