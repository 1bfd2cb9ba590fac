// Package token issues opaque, expiring tokens.
//
// A token is a JSON claims document encrypted with AES-CBC and rendered as
// base36 text, so it is URL and filename safe without escaping:
//
//	{"payload":{...},"iat":<ms>,"exp":<ms>,"jti":"<uuid>"}
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"idkit.io/v2/pkg/crypt"
	"idkit.io/v2/pkg/id"
)

var (
	// ErrInvalidConfig is wrapped by NewIssuer.
	ErrInvalidConfig = errors.New("token: invalid config")

	// ErrInvalid is wrapped when a token cannot be decrypted or decoded.
	ErrInvalid = errors.New("token: invalid token")

	// ErrExpired is returned for operations that require a live token.
	ErrExpired = errors.New("token: expired")
)

// DefaultTTL is used when Config.TTL is zero.
const DefaultTTL = 24 * time.Hour

// createTimeLayout is an ISO-8601 local date-time, no zone.
const createTimeLayout = "2006-01-02T15:04:05.999999999"

// Config parameters to create an Issuer.
type Config struct {
	// Key is a 16, 24 or 32 byte AES key as base36 text.
	Key string
	// IV is a 16 byte AES IV as base36 text.
	IV string
	// TTL is how long issued tokens stay valid.
	TTL time.Duration
}

// Issuer creates and verifies tokens.
type Issuer struct {
	key string
	iv  string
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates an Issuer, checking that the key and IV are usable.
func NewIssuer(config Config) (*Issuer, error) {
	key, iv := strings.TrimSpace(config.Key), strings.TrimSpace(config.IV)
	if key == "" || iv == "" {
		return nil, fmt.Errorf("key and iv are required: %w", ErrInvalidConfig)
	}

	ttl := config.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < 0 {
		return nil, fmt.Errorf("ttl %s must be positive: %w", ttl, ErrInvalidConfig)
	}

	if _, err := crypt.EncryptBase36("", key, iv); err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrInvalidConfig)
	}

	return &Issuer{key: key, iv: iv, ttl: ttl, now: time.Now}, nil
}

type claims struct {
	Payload   map[string]interface{} `json:"payload"`
	IssuedAt  int64                  `json:"iat"`
	ExpiresAt int64                  `json:"exp"`
	ID        string                 `json:"jti"`
}

// Info is the decoded content of a token.
type Info struct {
	Payload   map[string]interface{}
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Expired reports whether the token had expired at t.
func (i *Info) Expired(t time.Time) bool { return t.After(i.ExpiresAt) }

// Subject returns the "id" payload field set by GenerateFor, or "".
func (i *Info) Subject() string {
	s, _ := i.Payload["id"].(string)
	return s
}

// CreatedAt returns the "createTime" payload field set by GenerateFor.
func (i *Info) CreatedAt() (time.Time, bool) {
	s, ok := i.Payload["createTime"].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(createTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Generate issues a token carrying payload.
func (iss *Issuer) Generate(payload map[string]interface{}) (string, error) {
	if payload == nil {
		return "", errors.New("token: payload cannot be nil")
	}

	t := iss.now()
	c := claims{
		Payload:   payload,
		IssuedAt:  t.UnixMilli(),
		ExpiresAt: t.Add(iss.ttl).UnixMilli(),
		ID:        id.NewUUID(),
	}

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal token claims: %w", err)
	}

	tok, err := crypt.EncryptBase36(string(data), iss.key, iss.iv)
	if err != nil {
		return "", fmt.Errorf("encrypt token: %w", err)
	}
	return tok, nil
}

// GenerateFor issues a token for subject, recording when the subject was created.
func (iss *Issuer) GenerateFor(subject string, created time.Time) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("token: subject cannot be empty")
	}
	return iss.Generate(map[string]interface{}{
		"id":         subject,
		"createTime": created.Format(createTimeLayout),
	})
}

// Parse decrypts and decodes a token. Expired tokens are returned without error.
func (iss *Issuer) Parse(tok string) (*Info, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, fmt.Errorf("empty token: %w", ErrInvalid)
	}

	data, err := crypt.DecryptBase36(tok, iss.key, iss.iv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrInvalid)
	}

	var c claims
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("decode claims: %s: %w", err, ErrInvalid)
	}

	return &Info{
		Payload:   c.Payload,
		IssuedAt:  time.UnixMilli(c.IssuedAt),
		ExpiresAt: time.UnixMilli(c.ExpiresAt),
		ID:        c.ID,
	}, nil
}

// Valid reports whether tok parses and has not expired.
func (iss *Issuer) Valid(tok string) bool {
	info, err := iss.Parse(tok)
	return err == nil && !info.Expired(iss.now())
}

// Refresh issues a new token with the payload of a live token.
func (iss *Issuer) Refresh(tok string) (string, error) {
	info, err := iss.Parse(tok)
	if err != nil {
		return "", err
	}
	if info.Expired(iss.now()) {
		return "", ErrExpired
	}
	return iss.Generate(info.Payload)
}

// Remaining returns how long tok stays valid, zero once expired.
func (iss *Issuer) Remaining(tok string) (time.Duration, error) {
	info, err := iss.Parse(tok)
	if err != nil {
		return 0, err
	}
	if d := info.ExpiresAt.Sub(iss.now()); d > 0 {
		return d, nil
	}
	return 0, nil
}
