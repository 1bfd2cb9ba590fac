// Package codec converts between raw bytes and text.
//
// Two families are provided. Base36 is a big-integer codec over the
// alphabet "abcdefghijklmnopqrstuvwxyz0123456789" where 'a' is the zero
// symbol, so leading zero bytes are written as leading 'a' characters.
// Base64 follows RFC 4648, in the standard padded form and a URL-safe
// unpadded form.
package codec

import "errors"

// ErrMalformedInput is wrapped by every decode error: a character outside
// the alphabet, or invalid padding.
var ErrMalformedInput = errors.New("codec: malformed input")
