// config/duration.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDurationFlexible accepts "90s"/"2m", numeric seconds, or time.Duration.
// Unknown types yield def with no error; bad or non-positive values yield
// def and an error.
func parseDurationFlexible(raw any, def time.Duration) (time.Duration, error) {
	var d time.Duration
	switch t := raw.(type) {
	case time.Duration:
		d = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			n, nerr := strconv.ParseInt(s, 10, 64)
			if nerr != nil {
				return def, fmt.Errorf("cannot parse duration %q", s)
			}
			parsed = time.Duration(n) * time.Second
		}
		d = parsed
	case int:
		d = time.Duration(t) * time.Second
	case int32:
		d = time.Duration(t) * time.Second
	case int64:
		d = time.Duration(t) * time.Second
	case float64:
		d = time.Duration(t * float64(time.Second))
	default:
		return def, nil
	}
	if d <= 0 {
		return def, fmt.Errorf("duration must be > 0, got %v", raw)
	}
	return d, nil
}
