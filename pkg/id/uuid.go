package id

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	timestampMask = 1<<48 - 1
	versionV7     = 0x7000
	variantRFC    = 0x8000000000000000
)

// NewUUIDv7 returns a time-ordered UUID in canonical hyphenated form.
//
// Layout: 48 bits of Unix milliseconds, version 7, 12 random bits,
// the RFC 4122 variant, 62 random bits. The random bits come from
// math/rand/v2, uniqueness relies on the timestamp plus 74 random bits.
func NewUUIDv7() string {
	ms := uint64(now().UnixMilli()) & timestampMask

	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], ms<<16|versionV7|rand.Uint64()&0x0fff)
	binary.BigEndian.PutUint64(u[8:], rand.Uint64()>>2|variantRFC)
	return u.String()
}

// UUIDv7Time returns the millisecond timestamp of a version 7 UUID.
func UUIDv7Time(s string) (int64, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("parse uuid %q: %s: %w", s, err, ErrFormat)
	}
	if v := u.Version(); v != 7 {
		return 0, fmt.Errorf("uuid %q is version %d, not 7: %w", s, v, ErrFormat)
	}
	return int64(binary.BigEndian.Uint64(u[:8]) >> 16), nil
}

// NewUUID returns a random version 4 UUID in canonical form.
func NewUUID() string { return uuid.NewString() }

// NewShort returns the two 64-bit halves of a random UUID as base36 text.
// The result is between 2 and 26 characters of [0-9a-z] and is not time-ordered.
func NewShort() string {
	hi, lo := halves(uuid.New())
	return strconv.FormatUint(hi, 36) + strconv.FormatUint(lo, 36)
}

// NewNumeric returns the two 64-bit halves of a random UUID as decimal digits.
func NewNumeric() string {
	hi, lo := halves(uuid.New())
	return strconv.FormatUint(hi, 10) + strconv.FormatUint(lo, 10)
}

func halves(u uuid.UUID) (uint64, uint64) {
	return binary.BigEndian.Uint64(u[:8]), binary.BigEndian.Uint64(u[8:])
}

// IsValidUUID reports whether s is a UUID in canonical 8-4-4-4-12 form.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// StripHyphens removes the hyphens from a UUID string.
func StripHyphens(s string) string { return strings.ReplaceAll(s, "-", "") }

// AddHyphens turns 32 hex digits into canonical UUID form.
func AddHyphens(s string) (string, error) {
	if len(s) != 32 {
		return "", fmt.Errorf("uuid %q must be 32 hex digits: %w", s, ErrInvalidArgument)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("uuid %q: %s: %w", s, err, ErrInvalidArgument)
	}
	return u.String(), nil
}
