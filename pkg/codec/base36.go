package codec

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	base36Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	base36Zero     = 'a'
)

var (
	big36       = big.NewInt(36)
	base36Index [256]int8
)

func init() {
	for i := range base36Index {
		base36Index[i] = -1
	}
	for i := 0; i < len(base36Alphabet); i++ {
		base36Index[base36Alphabet[i]] = int8(i)
	}
}

// EncodeBase36 renders b as base36 text.
// Each leading zero byte becomes one 'a'. A slice of only zero bytes encodes
// to the same number of 'a' characters, and an empty slice to "".
func EncodeBase36(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}
	if zeros == len(b) {
		return strings.Repeat(string(base36Zero), len(b))
	}

	var (
		n   = new(big.Int).SetBytes(b[zeros:])
		mod = new(big.Int)
		// log36(256) < 1.55, so this is an upper bound on the digit count.
		out = make([]byte, 0, zeros+(len(b)-zeros)*155/100+1)
	)
	for n.Sign() > 0 {
		n.DivMod(n, big36, mod)
		out = append(out, base36Alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		out = append(out, base36Zero)
	}

	// digits were produced least significant first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// DecodeBase36 reverses EncodeBase36.
// Every character must be in the base36 alphabet, otherwise the returned
// error wraps ErrMalformedInput.
func DecodeBase36(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if base36Index[s[i]] < 0 {
			return nil, fmt.Errorf("base36 character %q at offset %d: %w", s[i], i, ErrMalformedInput)
		}
	}

	zeros := 0
	for zeros < len(s) && s[zeros] == base36Zero {
		zeros++
	}
	if zeros == len(s) {
		return make([]byte, zeros), nil
	}

	n := new(big.Int)
	digit := new(big.Int)
	for i := zeros; i < len(s); i++ {
		n.Mul(n, big36)
		n.Add(n, digit.SetInt64(int64(base36Index[s[i]])))
	}

	mag := n.Bytes()
	out := make([]byte, zeros+len(mag))
	copy(out[zeros:], mag)
	return out, nil
}
