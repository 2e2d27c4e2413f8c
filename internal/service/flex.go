package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Multipart forms deliver the product payload as a JSON string typed by
// hand, so numbers and booleans often arrive quoted.  These types accept
// both spellings.

type flexFloat struct {
	Set   bool
	Value float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return &ValidationError{Message: "expected a number, got " + string(b)}
	}
	f.Set, f.Value = true, v
	return nil
}

type flexInt struct {
	Set   bool
	Value int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var ff flexFloat
	if err := ff.UnmarshalJSON(b); err != nil {
		return err
	}
	if !ff.Set {
		return nil
	}
	if ff.Value != float64(int(ff.Value)) {
		return &ValidationError{Message: "expected an integer, got " + string(b)}
	}
	f.Set, f.Value = true, int(ff.Value)
	return nil
}

type flexBool struct {
	Set   bool
	Value bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return &ValidationError{Message: "expected a boolean, got " + string(b)}
	}
	f.Set, f.Value = true, v
	return nil
}

// flexStrings accepts a JSON array of strings, a JSON array encoded as a
// string, or a single string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Message: "expected a list of strings"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			return &ValidationError{Message: "expected a list of strings"}
		}
		*f = list
		return nil
	}
	*f = []string{s}
	return nil
}

func decodeJSON(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return invalid("data", "payload is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return invalid("data", "malformed JSON: "+err.Error())
	}
	return nil
}

func trimmed(s string) string { return strings.TrimSpace(s) }
