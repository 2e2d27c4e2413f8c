package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "2b1f4a7e-0000-4000-8000-000000000001", "host", 15)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	if d := time.Until(tok.Exp); d < 14*time.Minute || d > 15*time.Minute {
		t.Errorf("Exp in %v, want ~15m", d)
	}
	claims, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if claims.Subject != "2b1f4a7e-0000-4000-8000-000000000001" || claims.Role != "host" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	good, _ := NewAccessToken("s3cret", "u1", "customer", 5)
	expired, _ := NewAccessToken("s3cret", "u1", "customer", -5)
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).SignedString([]byte("s3cret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{name: "wrong secret", secret: "other", raw: good.Token},
		{name: "expired", secret: "s3cret", raw: expired.Token},
		{name: "no subject", secret: "s3cret", raw: noSub},
		{name: "alg none", secret: "s3cret", raw: none},
		{name: "garbage", secret: "s3cret", raw: "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.secret, tt.raw); err != ErrInvalidToken {
				t.Errorf("ParseAccessToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken() error = %v", err)
	}
	b, _ := NewRefreshToken(7)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Errorf("raw tokens %q / %q", a.Raw, b.Raw)
	}
	if h := HashRefreshRaw(a.Raw); len(h) != 64 || h == a.Raw || h != HashRefreshRaw(a.Raw) {
		t.Errorf("HashRefreshRaw() = %q", h)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !VerifyPassword(hash, "correct horse") || VerifyPassword(hash, "wrong horse") {
		t.Error("VerifyPassword() mismatch")
	}
	tests := []struct {
		plain string
		want  bool
	}{
		{"short", false},
		{"longenough", true},
		{strings.Repeat("x", 73), false},
	}
	for _, tt := range tests {
		if got := PasswordAcceptable(tt.plain); got != tt.want {
			t.Errorf("PasswordAcceptable(%q) = %v, want %v", tt.plain, got, tt.want)
		}
	}
}
