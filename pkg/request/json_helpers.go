package request

import (
	"fmt"
	"strings"
)

// ReadString trims the input if it is a string and returns an error otherwise.
func ReadString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return "", fmt.Errorf("string is empty")
		}
		return trimmed, nil
	default:
		return "", fmt.Errorf("value is not a string")
	}
}

// ReadStringAllowEmpty trims the input if it is a string, allowing "".
func ReadStringAllowEmpty(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	default:
		return "", fmt.Errorf("value is not a string")
	}
}

// ReadStringSlice converts a JSON array of strings ([]interface{}) into []string.
func ReadStringSlice(value interface{}) ([]string, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("value is not an array")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("array element is not a string")
		}
		out = append(out, strings.TrimSpace(str))
	}
	return out, nil
}
