package service

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/iliyamo/dantour/internal/repository"
)

// Page limits of the product listing.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// EncodeCursor renders the position after a row as an opaque token.
func EncodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token from EncodeCursor.  A bare RFC3339
// timestamp is accepted too and selects rows strictly older than it.
func DecodeCursor(s string) (*repository.ProductCursor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &repository.ProductCursor{CreatedAt: t.UTC()}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, invalid("cursor", "malformed cursor")
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, invalid("cursor", "malformed cursor")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, invalid("cursor", "malformed cursor")
	}
	return &repository.ProductCursor{CreatedAt: t.UTC(), ID: id}, nil
}

// clampLimit applies the default and the maximum page size.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
