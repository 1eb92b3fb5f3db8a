// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "EVENTDESK"

// HTTPConfig groups listener ports and server timeouts.
type HTTPConfig struct {
	HTTPPort  int  `mapstructure:"http_port"`
	HTTPSPort int  `mapstructure:"https_port"`
	UseHTTPS  bool `mapstructure:"use_https"`

	ReadTimeout       time.Duration `mapstructure:"-"`
	ReadHeaderTimeout time.Duration `mapstructure:"-"`
	WriteTimeout      time.Duration `mapstructure:"-"`
	IdleTimeout       time.Duration `mapstructure:"-"`
	ShutdownTimeout   time.Duration `mapstructure:"-"`
}

// TLSConfig groups manual certificate and Let's Encrypt settings.
type TLSConfig struct {
	CertFile            string `mapstructure:"cert_file"`
	KeyFile             string `mapstructure:"key_file"`
	UseLetsEncrypt      bool   `mapstructure:"use_lets_encrypt"`
	LetsEncryptEmail    string `mapstructure:"lets_encrypt_email"`
	LetsEncryptCacheDir string `mapstructure:"lets_encrypt_cache_dir"`
	Domain              string `mapstructure:"domain"`
}

// CORSConfig groups CORS behavior and lists.
type CORSConfig struct {
	EnableCORS           bool     `mapstructure:"enable_cors"`
	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string `mapstructure:"cors_allowed_headers"`
	CORSExposedHeaders   []string `mapstructure:"cors_exposed_headers"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int      `mapstructure:"cors_max_age"`
}

// SecurityConfig toggles the security headers middleware.
type SecurityConfig struct {
	EnableSecurityHeaders bool   `mapstructure:"enable_security_headers"`
	ContentSecurityPolicy string `mapstructure:"content_security_policy"`
}

// CoreConfig holds the service-level configuration.
type CoreConfig struct {
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	HTTP     HTTPConfig     `mapstructure:",squash"`
	TLS      TLSConfig      `mapstructure:",squash"`
	CORS     CORSConfig     `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`

	DBConnectTimeout time.Duration `mapstructure:"-"`
	IndexBootTimeout time.Duration `mapstructure:"-"`

	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes"`
	EnableCompression   bool  `mapstructure:"enable_compression"`
}

// Dump returns a pretty JSON string of the config for debugging.
// CoreConfig carries no secrets; app values are redacted separately.
func (c CoreConfig) Dump() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

// durationKeys are parsed with parseDurationFlexible after Unmarshal.
var durationKeys = map[string]time.Duration{
	"db_connect_timeout":  10 * time.Second,
	"index_boot_timeout":  120 * time.Second,
	"read_timeout":        15 * time.Second,
	"read_header_timeout": 10 * time.Second,
	"write_timeout":       60 * time.Second,
	"idle_timeout":        120 * time.Second,
	"shutdown_timeout":    15 * time.Second,
}

func (c *CoreConfig) durationTarget(key string) *time.Duration {
	switch key {
	case "db_connect_timeout":
		return &c.DBConnectTimeout
	case "index_boot_timeout":
		return &c.IndexBootTimeout
	case "read_timeout":
		return &c.HTTP.ReadTimeout
	case "read_header_timeout":
		return &c.HTTP.ReadHeaderTimeout
	case "write_timeout":
		return &c.HTTP.WriteTimeout
	case "idle_timeout":
		return &c.HTTP.IdleTimeout
	case "shutdown_timeout":
		return &c.HTTP.ShutdownTimeout
	}
	return nil
}

// Load reads core config only. See LoadWithAppConfig.
func Load(logger *zap.Logger) (*CoreConfig, error) {
	core, _, err := LoadWithAppConfig(logger, pflag.CommandLine, os.Args[1:], nil)
	return core, err
}

// LoadWithAppConfig merges defaults → config.* file(s) → env vars → explicit
// flags into one CoreConfig plus the app's own keys.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
//
// fs and args are passed in so tests can load from a private flag set.
func LoadWithAppConfig(logger *zap.Logger, fs *pflag.FlagSet, args []string, appKeys []AppKey) (*CoreConfig, AppConfigValues, error) {
	// .env is optional; real env still wins over it.
	if err := godotenv.Load(); err == nil && logger != nil {
		logger.Info("Loaded .env file")
	}

	registerCoreFlags(fs)
	if err := registerAppFlags(fs, appKeys); err != nil {
		return nil, nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	mergeConfigFiles(logger, v)
	setDefaults(v)

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	if err := normalizeListKeys(v,
		"cors_allowed_origins",
		"cors_allowed_methods",
		"cors_allowed_headers",
		"cors_exposed_headers",
	); err != nil {
		return nil, nil, err
	}

	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode core config: %w", err)
	}

	for key, def := range durationKeys {
		d, err := parseDurationFlexible(v.Get(key), def)
		if err != nil && logger != nil {
			logger.Warn("invalid duration; using default",
				zap.String("key", key), zap.Any("value", v.Get(key)),
				zap.Duration("default", def), zap.Error(err))
		}
		*cfg.durationTarget(key) = d
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))

	if err := validateCoreConfig(cfg); err != nil {
		return nil, nil, err
	}

	appVals, err := loadAppConfig(logger, v, fs, appKeys)
	if err != nil {
		return nil, nil, err
	}
	return &cfg, appVals, nil
}

func mergeConfigFiles(logger *zap.Logger, v *viper.Viper) {
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			if logger != nil {
				logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			if logger != nil {
				logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Info("Loaded config file", zap.String("file", file))
		}
	}
}

func registerCoreFlags(fs *pflag.FlagSet) {
	if fs.Lookup("env") != nil {
		return
	}
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "debug", "Log level")

	fs.Int("http_port", 8080, "HTTP port")
	fs.Int("https_port", 443, "HTTPS port")
	fs.Bool("use_https", false, "Serve HTTPS")

	fs.Bool("use_lets_encrypt", false, "Use Let's Encrypt (http-01)")
	fs.String("lets_encrypt_email", "", "ACME account e-mail")
	fs.String("lets_encrypt_cache_dir", "letsencrypt-cache", "ACME cache dir")
	fs.String("cert_file", "", "TLS cert file (manual TLS)")
	fs.String("key_file", "", "TLS key file  (manual TLS)")
	fs.String("domain", "", "Domain for TLS or ACME")

	fs.String("db_connect_timeout", "10s", "Startup timeout for DB connection")
	fs.String("index_boot_timeout", "120s", "Startup timeout for schema creation")
	fs.String("read_timeout", "15s", "HTTP read timeout")
	fs.String("read_header_timeout", "10s", "HTTP read header timeout")
	fs.String("write_timeout", "60s", "HTTP write timeout")
	fs.String("idle_timeout", "120s", "HTTP idle timeout")
	fs.String("shutdown_timeout", "15s", "Graceful shutdown timeout")

	fs.Bool("enable_compression", true, "Enable HTTP compression")
	fs.Bool("enable_security_headers", true, "Send security headers")
	fs.String("content_security_policy", "", "Content-Security-Policy header value")

	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://a.example"]'`)
	fs.String("cors_allowed_methods", "", `JSON array of methods, e.g. '["GET","POST"]'`)
	fs.String("cors_allowed_headers", "", `JSON array of headers, e.g. '["Accept","Authorization"]'`)
	fs.String("cors_exposed_headers", "", `JSON array of headers, e.g. '["Link"]'`)
	fs.Bool("cors_allow_credentials", false, "CORS: allow credentials")
	fs.Int("cors_max_age", 0, "CORS: max age seconds (0 disables cache)")

	fs.Int64("max_request_body_bytes", 2<<20, "Max HTTP request body size in bytes (0 = unlimited)")
}

func allKeys() []string {
	return []string{
		"env", "log_level",
		"http_port", "https_port", "use_https",
		"use_lets_encrypt", "lets_encrypt_email", "lets_encrypt_cache_dir",
		"cert_file", "key_file", "domain",
		"db_connect_timeout", "index_boot_timeout",
		"read_timeout", "read_header_timeout", "write_timeout", "idle_timeout", "shutdown_timeout",
		"enable_compression", "enable_security_headers", "content_security_policy",
		"enable_cors",
		"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers",
		"cors_exposed_headers", "cors_allow_credentials", "cors_max_age",
		"max_request_body_bytes",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "debug")

	v.SetDefault("http_port", 8080)
	v.SetDefault("https_port", 443)
	v.SetDefault("use_https", false)

	v.SetDefault("use_lets_encrypt", false)
	v.SetDefault("lets_encrypt_email", "")
	v.SetDefault("lets_encrypt_cache_dir", "letsencrypt-cache")
	v.SetDefault("cert_file", "")
	v.SetDefault("key_file", "")
	v.SetDefault("domain", "")

	for key, def := range durationKeys {
		v.SetDefault(key, def.String())
	}

	v.SetDefault("enable_compression", true)
	v.SetDefault("enable_security_headers", true)
	v.SetDefault("content_security_policy", "")

	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{})
	v.SetDefault("cors_allowed_headers", []string{})
	v.SetDefault("cors_exposed_headers", []string{})
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("cors_max_age", 0)

	v.SetDefault("max_request_body_bytes", int64(2<<20))
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		arr, err := asStringSlice(key, v.Get(key))
		if err != nil {
			return err
		}
		if arr != nil {
			v.Set(key, arr)
		}
	}
	return nil
}

func asStringSlice(key string, val any) ([]string, error) {
	switch t := val.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return []string{}, nil
		}
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err != nil {
			return nil, fmt.Errorf("config key %q expects a JSON array string, got %q: %w", key, s, err)
		}
		return arr, nil
	case []any:
		arr := make([]string, 0, len(t))
		for _, item := range t {
			arr = append(arr, fmt.Sprint(item))
		}
		return arr, nil
	case []string:
		return t, nil
	}
	return nil, nil
}

func validateCoreConfig(cfg CoreConfig) error {
	var missing []string
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}

	if cfg.TLS.UseLetsEncrypt && !cfg.HTTP.UseHTTPS {
		invalid = append(invalid, "use_lets_encrypt=true requires use_https=true")
	}
	if cfg.TLS.UseLetsEncrypt && (strings.TrimSpace(cfg.TLS.CertFile) != "" || strings.TrimSpace(cfg.TLS.KeyFile) != "") {
		invalid = append(invalid, "use_lets_encrypt=true cannot be combined with cert_file/key_file")
	}
	if cfg.TLS.UseLetsEncrypt {
		if strings.TrimSpace(cfg.TLS.Domain) == "" {
			missing = append(missing, "EVENTDESK_DOMAIN (or --domain) for Let's Encrypt")
		}
		if s := strings.TrimSpace(cfg.TLS.LetsEncryptEmail); s == "" {
			missing = append(missing, "EVENTDESK_LETS_ENCRYPT_EMAIL (or --lets_encrypt_email)")
		} else if !strings.Contains(s, "@") {
			invalid = append(invalid, "lets_encrypt_email must look like an email address")
		}
	}
	if cfg.HTTP.UseHTTPS && !cfg.TLS.UseLetsEncrypt {
		if strings.TrimSpace(cfg.TLS.CertFile) == "" || strings.TrimSpace(cfg.TLS.KeyFile) == "" {
			missing = append(missing, "EVENTDESK_CERT_FILE and EVENTDESK_KEY_FILE (or --cert_file/--key_file) for manual TLS")
		}
	}

	if cfg.HTTP.HTTPPort <= 0 || cfg.HTTP.HTTPPort > 65535 {
		invalid = append(invalid, "http_port must be in 1..65535")
	}
	if cfg.HTTP.HTTPSPort <= 0 || cfg.HTTP.HTTPSPort > 65535 {
		invalid = append(invalid, "https_port must be in 1..65535")
	}
	if cfg.HTTP.UseHTTPS && cfg.HTTP.HTTPPort == cfg.HTTP.HTTPSPort {
		invalid = append(invalid, "http_port and https_port cannot be equal when use_https=true")
	}

	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		if len(cfg.CORS.CORSAllowedMethods) == 0 {
			missing = append(missing, "CORS: cors_allowed_methods (JSON array) required when enable_cors=true")
		}
		for _, o := range cfg.CORS.CORSAllowedOrigins {
			if o == "*" && cfg.CORS.CORSAllowCredentials {
				invalid = append(invalid, `CORS: cannot use "*" in cors_allowed_origins when cors_allow_credentials=true`)
				break
			}
		}
		if cfg.CORS.CORSMaxAge < 0 {
			invalid = append(invalid, "CORS: cors_max_age must be >= 0")
		}
	}

	if cfg.MaxRequestBodyBytes < 0 {
		invalid = append(invalid, "max_request_body_bytes must be >= 0")
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("core configuration errors: %s", strings.Join(parts, " | "))
}
