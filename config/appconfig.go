// config/appconfig.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AppKey declares one application setting. It is read from config files
// under Name, from EVENTDESK_<NAME> in the environment and from --<name>.
type AppKey struct {
	Name string

	// Default is the value used when nothing else sets the key.
	// Supported types: string, int, int64, bool, []string.
	Default any

	// Desc is a short description for --help output.
	Desc string
}

// AppConfigValues holds loaded app settings keyed by AppKey.Name.
type AppConfigValues map[string]any

// String returns a string value or "" if missing.
func (a AppConfigValues) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int returns an int value or 0. Env values arrive as strings and are parsed.
func (a AppConfigValues) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscan(strings.TrimSpace(v), &n); err == nil {
			return n
		}
	}
	return 0
}

// Bool returns a bool value or false.
func (a AppConfigValues) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "yes", "on":
			return true
		}
	}
	return false
}

// StringSlice returns a []string value or nil.
func (a AppConfigValues) StringSlice(key string) []string {
	if v, ok := a[key].([]string); ok {
		return v
	}
	return nil
}

// Duration parses "10m", "90s" or plain seconds. It returns def when the key
// is missing or invalid.
func (a AppConfigValues) Duration(key string, def time.Duration) time.Duration {
	raw := a[key]
	if raw == nil {
		return def
	}
	d, err := parseDurationFlexible(raw, def)
	if err != nil {
		return def
	}
	return d
}

// Redacted returns a copy safe to log.
func (a AppConfigValues) Redacted() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if isSecretKey(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func isSecretKey(name string) bool {
	n := strings.ToLower(name)
	for _, s := range [...]string{"key", "secret", "password", "token", "dsn"} {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}

func registerAppFlags(fs *pflag.FlagSet, keys []AppKey) error {
	for _, key := range keys {
		if fs.Lookup(key.Name) != nil {
			return fmt.Errorf("config key %q conflicts with existing flag", key.Name)
		}
		switch d := key.Default.(type) {
		case string:
			fs.String(key.Name, d, key.Desc)
		case int:
			fs.Int(key.Name, d, key.Desc)
		case int64:
			fs.Int64(key.Name, d, key.Desc)
		case bool:
			fs.Bool(key.Name, d, key.Desc)
		case []string:
			fs.String(key.Name, "", key.Desc+" (JSON array)")
		default:
			return fmt.Errorf("config key %q has unsupported default type %T", key.Name, key.Default)
		}
	}
	return nil
}

// loadAppConfig resolves app keys with the same precedence as the core:
// flags > env > config files > defaults.
func loadAppConfig(logger *zap.Logger, v *viper.Viper, fs *pflag.FlagSet, keys []AppKey) (AppConfigValues, error) {
	result := make(AppConfigValues, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	appV := viper.New()
	appV.SetEnvPrefix(EnvPrefix)
	appV.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	appV.AutomaticEnv()

	for _, key := range keys {
		appV.SetDefault(key.Name, key.Default)
		_ = appV.BindEnv(key.Name)
		if v.IsSet(key.Name) {
			appV.Set(key.Name, v.Get(key.Name))
		}
		if f := fs.Lookup(key.Name); f != nil && f.Changed {
			_ = appV.BindPFlag(key.Name, f)
		}
	}

	for _, key := range keys {
		val := appV.Get(key.Name)
		if _, isList := key.Default.([]string); isList {
			arr, err := asStringSlice(key.Name, val)
			if err != nil {
				return nil, err
			}
			val = arr
		}
		result[key.Name] = val
	}

	if logger != nil {
		fields := make([]zap.Field, 0, len(keys))
		for k, val := range result.Redacted() {
			fields = append(fields, zap.Any(k, val))
		}
		logger.Info("app config loaded", fields...)
	}
	return result, nil
}
