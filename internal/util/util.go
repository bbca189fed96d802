package util

import (
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// MarshalJSON wraps Sonic for performance
func MarshalJSON(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// UnmarshalJSON wraps Sonic for performance
func UnmarshalJSON(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// TruncateString keeps prefixLen and suffixLen bytes and puts replacement
// in between.
func TruncateString(s string, prefixLen, suffixLen int, replacement string) string {
	if len(s) > prefixLen+suffixLen {
		return s[:prefixLen] + replacement + s[len(s)-suffixLen:]
	}
	return s
}

// MaskSecret hides all but the edges of a credential for logging.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return TruncateString(s, 4, 4, "***")
}

// ParseEnvList parses comma-separated env var to trimmed slice
func ParseEnvList(envVar string) []string {
	if envVar == "" {
		return nil
	}
	parts := strings.Split(envVar, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// GetEnvWithDefault gets env var with default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt reads a positive integer env var. Missing, malformed or
// non-positive values yield defaultValue and ok=false when a value was set.
func GetEnvInt(key string, defaultValue int) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultValue, false
	}
	return n, true
}
