// Package hash computes message digests as hex or base64 text.
package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	gohash "hash"
	"io"
	"os"
	"strings"

	"idkit.io/v2/pkg/codec"
)

// ErrUnknownAlgorithm is wrapped by Parse.
var ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

// Algorithm names a digest function.
type Algorithm string

// Supported algorithms.
const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA384 Algorithm = "sha384"
	SHA512 Algorithm = "sha512"
)

// Parse accepts names such as "sha256", "SHA-256" or "Sha256".
func Parse(name string) (Algorithm, error) {
	alg := Algorithm(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", ""))
	if _, err := alg.new(); err != nil {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownAlgorithm)
	}
	return alg, nil
}

func (a Algorithm) new() (gohash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%q: %w", string(a), ErrUnknownAlgorithm)
	}
}

func (a Algorithm) sum(data []byte) ([]byte, error) {
	h, err := a.new()
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// Sum returns the lower case hex digest of data.
func Sum(alg Algorithm, data []byte) (string, error) {
	b, err := alg.sum(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SumBase64 returns the standard base64 digest of data.
func SumBase64(alg Algorithm, data []byte) (string, error) {
	b, err := alg.sum(data)
	if err != nil {
		return "", err
	}
	return codec.EncodeBase64(b), nil
}

// SumFile streams the file at path through alg and returns the hex digest.
func SumFile(alg Algorithm, path string) (string, error) {
	h, err := alg.new()
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify compares the hex digest of data with expected, ignoring case.
func Verify(alg Algorithm, data []byte, expected string) (bool, error) {
	got, err := Sum(alg, data)
	if err != nil {
		return false, err
	}
	return equalFold(got, expected), nil
}

// VerifyFile compares the hex digest of the file at path with expected.
func VerifyFile(alg Algorithm, path, expected string) (bool, error) {
	got, err := SumFile(alg, path)
	if err != nil {
		return false, err
	}
	return equalFold(got, expected), nil
}

func equalFold(got, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(strings.TrimSpace(expected)))) == 1
}
