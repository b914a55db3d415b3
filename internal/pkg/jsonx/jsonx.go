// Package jsonx holds helpers for the opaque JSON columns.
package jsonx

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Marshal encodes v, returning "null" on failure.
func Marshal(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

// Empty reports whether j holds no value.
func Empty(j datatypes.JSON) bool {
	s := strings.TrimSpace(string(j))
	return s == "" || s == "null" || s == "{}"
}

// Decode unmarshals j into T. Empty input yields the zero value.
func Decode[T any](j datatypes.JSON) (T, error) {
	var out T
	if Empty(j) {
		return out, nil
	}
	err := json.Unmarshal(j, &out)
	return out, err
}

// Strings decodes a JSON string array, dropping anything malformed.
func Strings(j datatypes.JSON) []string {
	out, err := Decode[[]string](j)
	if err != nil || out == nil {
		return []string{}
	}
	return out
}

// Map decodes a JSON object for embedding into snapshot payloads.
// Returns nil for empty or malformed input.
func Map(j datatypes.JSON) map[string]any {
	out, err := Decode[map[string]any](j)
	if err != nil {
		return nil
	}
	return out
}

// ExtractObject returns the text between the first '{' and last '}'.
func ExtractObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
