// Package id generates and inspects unique identifiers.
//
// Two time-ordered shapes are supported. A ULID is 26 Crockford Base32
// characters: 10 for a millisecond timestamp followed by 16 for 80 bits of
// cryptographic randomness. Sorting valid ULIDs as strings sorts them by
// time. A UUIDv7 carries a 48-bit millisecond timestamp in its high bits and
// sorts by time when compared as a 128-bit number.
//
// Random v4 UUIDs and short or numeric renderings of them are provided for
// callers that do not need ordering.
package id

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrFormat is wrapped when text is not an identifier of the expected shape.
	ErrFormat = errors.New("id: invalid format")

	// ErrInvalidArgument is wrapped when a generator is given an unusable input.
	ErrInvalidArgument = errors.New("id: invalid argument")
)

// replaced in tests.
var now = time.Now

const (
	ulidLen     = 26
	ulidTimeLen = 10
)

var ulidIndex [256]int8

func init() {
	for i := range ulidIndex {
		ulidIndex[i] = -1
	}
	for i := 0; i < len(ulid.Encoding); i++ {
		ulidIndex[ulid.Encoding[i]] = int8(i)
	}
}

// New returns a unique identifier.
// The format is a Universally Unique Lexicographically Sortable Identifier (ULID)
// stamped with the current time.
func New() string { return ulid.MustNew(ulid.Timestamp(now()), rand.Reader).String() }

// NewAt returns a ULID stamped with ms, in milliseconds since the Unix epoch.
// ms must be non-negative and fit in 48 bits.
func NewAt(ms int64) (string, error) {
	if ms < 0 {
		return "", fmt.Errorf("ulid timestamp %d is negative: %w", ms, ErrInvalidArgument)
	}
	if uint64(ms) > ulid.MaxTime() {
		return "", fmt.Errorf("ulid timestamp %d exceeds 48 bits: %w", ms, ErrInvalidArgument)
	}

	u, err := ulid.New(uint64(ms), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("new ulid: %w", err)
	}
	return u.String(), nil
}

// IsValid reports whether s is 26 characters of the upper case Crockford alphabet.
func IsValid(s string) bool {
	if len(s) != ulidLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if ulidIndex[s[i]] < 0 {
			return false
		}
	}
	return true
}

// Time returns the millisecond timestamp held in the first 10 characters of a ULID.
func Time(s string) (int64, error) {
	if !IsValid(s) {
		return 0, fmt.Errorf("ulid %q: %w", s, ErrFormat)
	}

	var ms int64
	for i := 0; i < ulidTimeLen; i++ {
		ms = ms<<5 | int64(ulidIndex[s[i]])
	}
	return ms, nil
}

// Compare orders two ULIDs by timestamp, returning -1, 0 or 1.
func Compare(a, b string) (int, error) {
	ta, err := Time(a)
	if err != nil {
		return 0, err
	}
	tb, err := Time(b)
	if err != nil {
		return 0, err
	}

	switch {
	case ta < tb:
		return -1, nil
	case ta > tb:
		return 1, nil
	default:
		return 0, nil
	}
}
