package token

import (
	"errors"
	"testing"
	"time"

	"idkit.io/v2/pkg/crypt"
)

func testIssuer(t *testing.T, ttl time.Duration) (*Issuer, *time.Time) {
	t.Helper()
	iss, err := NewIssuer(Config{Key: crypt.GenerateKey(), IV: crypt.GenerateIV(), TTL: ttl})
	if err != nil {
		t.Fatal(err)
	}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return clock }
	return iss, &clock
}

func TestNewIssuerInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "empty", config: Config{}},
		{name: "no iv", config: Config{Key: crypt.GenerateKey()}},
		{name: "negative ttl", config: Config{Key: crypt.GenerateKey(), IV: crypt.GenerateIV(), TTL: -time.Second}},
		{name: "short key", config: Config{Key: "bcd", IV: crypt.GenerateIV()}},
		{name: "malformed key", config: Config{Key: "NOPE", IV: crypt.GenerateIV()}},
	}

	for _, tt := range tests {
		if _, err := NewIssuer(tt.config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: got err %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}

func TestGenerateForAndParse(t *testing.T) {
	iss, clock := testIssuer(t, time.Hour)
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	tok, err := iss.GenerateFor(" user-1 ", created)
	if err != nil {
		t.Fatal(err)
	}

	info, err := iss.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Subject(); got != "user-1" {
		t.Errorf("subject: got %q", got)
	}
	if got, ok := info.CreatedAt(); !ok || !got.Equal(created) {
		t.Errorf("created at: got %s, %v; want %s", got, ok, created)
	}
	if !info.IssuedAt.Equal(*clock) {
		t.Errorf("issued at: got %s, want %s", info.IssuedAt, *clock)
	}
	if want := clock.Add(time.Hour); !info.ExpiresAt.Equal(want) {
		t.Errorf("expires at: got %s, want %s", info.ExpiresAt, want)
	}
	if info.ID == "" {
		t.Error("expected a token id")
	}
	if !iss.Valid(tok) {
		t.Error("expected token to be valid")
	}
}

func TestExpiry(t *testing.T) {
	iss, clock := testIssuer(t, time.Minute)

	tok, err := iss.GenerateFor("user-1", *clock)
	if err != nil {
		t.Fatal(err)
	}

	*clock = clock.Add(30 * time.Second)
	if d, err := iss.Remaining(tok); err != nil || d != 30*time.Second {
		t.Errorf("remaining: got %s, %v; want 30s", d, err)
	}

	refreshed, err := iss.Refresh(tok)
	if err != nil {
		t.Fatal(err)
	}
	if d, err := iss.Remaining(refreshed); err != nil || d != time.Minute {
		t.Errorf("remaining after refresh: got %s, %v; want 1m", d, err)
	}

	*clock = clock.Add(2 * time.Minute)
	if iss.Valid(tok) {
		t.Error("expected expired token to be invalid")
	}
	if d, err := iss.Remaining(tok); err != nil || d != 0 {
		t.Errorf("remaining: got %s, %v; want 0", d, err)
	}
	if _, err := iss.Refresh(tok); !errors.Is(err, ErrExpired) {
		t.Errorf("refresh: got err %v, want ErrExpired", err)
	}
}

func TestParseInvalid(t *testing.T) {
	iss, _ := testIssuer(t, time.Hour)
	other, _ := testIssuer(t, time.Hour)

	tok, err := other.Generate(map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}

	// a foreign key can decrypt to valid padding by chance, never to valid JSON.
	for _, in := range []string{"", "   ", "NOT-BASE36", "abc", tok} {
		if _, err := iss.Parse(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q): got err %v, want ErrInvalid", in, err)
		}
		if iss.Valid(in) {
			t.Errorf("Valid(%q): expected false", in)
		}
	}
}

func TestGenerateRejectsEmpty(t *testing.T) {
	iss, _ := testIssuer(t, time.Hour)
	if _, err := iss.Generate(nil); err == nil {
		t.Error("expected error for nil payload")
	}
	if _, err := iss.GenerateFor("  ", time.Now()); err == nil {
		t.Error("expected error for empty subject")
	}
}
