package config

import (
	"fmt"
	"strings"
)

// AutoDetect is either "auto" or an explicit boolean.
type AutoDetect struct {
	Auto  bool
	Value bool
}

// Auto returns the "auto" setting.
func Auto() AutoDetect { return AutoDetect{Auto: true} }

// Fixed returns an explicit setting.
func Fixed(v bool) AutoDetect { return AutoDetect{Value: v} }

// Enabled resolves the setting against a detected capability.
func (a AutoDetect) Enabled(detected bool) bool {
	if a.Auto {
		return detected
	}
	return a.Value
}

// String returns "auto", "true" or "false".
func (a AutoDetect) String() string {
	if a.Auto {
		return "auto"
	}
	if a.Value {
		return "true"
	}
	return "false"
}

// UnmarshalTOML accepts a boolean or one of the strings "auto", "true", "false".
func (a *AutoDetect) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case bool:
		*a = Fixed(t)
		return nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "auto", "":
			*a = Auto()
		case "true", "yes", "on":
			*a = Fixed(true)
		case "false", "no", "off":
			*a = Fixed(false)
		default:
			return fmt.Errorf("invalid auto-detect value %q", t)
		}
		return nil
	}
	return fmt.Errorf("invalid auto-detect value %v", v)
}

// MarshalText encodes the setting as a string so files round-trip.
func (a AutoDetect) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
