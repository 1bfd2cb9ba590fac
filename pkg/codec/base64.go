package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeBase64 renders b with the standard alphabet and '=' padding.
func EncodeBase64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// DecodeBase64 decodes padded standard base64.
// Foreign characters and missing or misplaced padding wrap ErrMalformedInput.
func DecodeBase64(s string) ([]byte, error) {
	if err := checkLineBreaks(s); err != nil {
		return nil, err
	}

	b, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64: %s: %w", err, ErrMalformedInput)
	}
	return b, nil
}

// EncodeURLSafe renders b with the URL and filename safe alphabet, without padding.
func EncodeURLSafe(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

// DecodeURLSafe decodes URL-safe base64.
// Unpadded input is expected, but correctly padded input is accepted too.
func DecodeURLSafe(s string) ([]byte, error) {
	if err := checkLineBreaks(s); err != nil {
		return nil, err
	}

	enc := base64.RawURLEncoding
	if strings.HasSuffix(s, "=") {
		enc = base64.URLEncoding
	}

	b, err := enc.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64url: %s: %w", err, ErrMalformedInput)
	}
	return b, nil
}

// EncodeBase64String encodes the UTF-8 bytes of text.
func EncodeBase64String(text string) string { return EncodeBase64([]byte(text)) }

// DecodeBase64String decodes s and returns the result as a string.
func DecodeBase64String(s string) (string, error) {
	b, err := DecodeBase64(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// encoding/base64 silently skips CR and LF while decoding.
func checkLineBreaks(s string) error {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return fmt.Errorf("base64 line break at offset %d: %w", i, ErrMalformedInput)
	}
	return nil
}
