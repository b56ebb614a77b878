package task

import (
	"errors"
	"fmt"
)

// ErrMissingPayloadKey is returned when a required payload field is absent.
var ErrMissingPayloadKey = errors.New("missing payload key")

// PayloadString reads a required string field.
func PayloadString(payload map[string]any, key string) (string, error) {
	v, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingPayloadKey, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("payload key %s: expected string, got %T", key, v)
	}
	return s, nil
}

// PayloadOptionalString reads a string field, returning "" when absent.
func PayloadOptionalString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

// PayloadInt64 reads a required integer field. Values decoded from JSON
// arrive as float64.
func PayloadInt64(payload map[string]any, key string) (int64, error) {
	v, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingPayloadKey, key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("payload key %s: expected number, got %T", key, v)
	}
}

// PayloadMap reads an optional nested object.
func PayloadMap(payload map[string]any, key string) map[string]any {
	m, _ := payload[key].(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}
