package Config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// StringOr returns the named variable, or defaultValue when it is unset or empty.
func StringOr(name, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}

// IntOr parses the named variable as a decimal integer. Unparseable values
// are logged and fall back to defaultValue.
func IntOr(name string, defaultValue int) int {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		warnUnparseable(name, v, err)
		return defaultValue
	}
	return n
}

func FloatOr(name string, defaultValue float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		warnUnparseable(name, v, err)
		return defaultValue
	}
	return f
}

// DurationOr parses values such as "30s" or "5m".
func DurationOr(name string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		warnUnparseable(name, v, err)
		return defaultValue
	}
	return d
}

// StringSliceOr splits a comma-separated variable, dropping blank elements.
func StringSliceOr(name string, defaultValue []string) []string {
	v := os.Getenv(name)
	if v == "" {
		return defaultValue
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			result = append(result, t)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

func warnUnparseable(name, value string, err error) {
	slog.Default().Warn("Config:Load#Ignoring unparseable value", "name", name, "value", value, "err", err)
}
