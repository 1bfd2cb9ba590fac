// Package crypt encrypts data with AES in CBC mode and PKCS#7 padding,
// with helpers that carry keys, IVs and ciphertext as base36 or base64 text.
package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"

	"idkit.io/v2/pkg/codec"
)

var (
	// ErrInvalidKey is wrapped when a key is not 16, 24 or 32 bytes or an IV is not 16 bytes.
	ErrInvalidKey = errors.New("crypt: invalid key or iv")

	// ErrDecrypt is wrapped when ciphertext is not block aligned or its padding is corrupt.
	ErrDecrypt = errors.New("crypt: decrypt failed")
)

const scryptCost = 1 << 15

func block(key, iv []byte) (cipher.Block, error) {
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv is %d bytes, want %d: %w", len(iv), aes.BlockSize, ErrInvalidKey)
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("key is %d bytes, want 16, 24 or 32: %w", len(key), ErrInvalidKey)
	}
	return aes.NewCipher(key)
}

// Encrypt pads plain with PKCS#7 and encrypts it with AES-CBC.
func Encrypt(plain, key, iv []byte) ([]byte, error) {
	b, err := block(key, iv)
	if err != nil {
		return nil, err
	}

	n := aes.BlockSize - len(plain)%aes.BlockSize
	buf := make([]byte, len(plain)+n)
	copy(buf, plain)
	copy(buf[len(plain):], bytes.Repeat([]byte{byte(n)}, n))

	cipher.NewCBCEncrypter(b, iv).CryptBlocks(buf, buf)
	return buf, nil
}

// Decrypt reverses Encrypt.
func Decrypt(data, key, iv []byte) ([]byte, error) {
	b, err := block(key, iv)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of %d: %w", len(data), aes.BlockSize, ErrDecrypt)
	}

	buf := make([]byte, len(data))
	cipher.NewCBCDecrypter(b, iv).CryptBlocks(buf, data)

	n := int(buf[len(buf)-1])
	if n == 0 || n > aes.BlockSize {
		return nil, fmt.Errorf("padding length %d: %w", n, ErrDecrypt)
	}
	for _, p := range buf[len(buf)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("corrupt padding: %w", ErrDecrypt)
		}
	}
	return buf[:len(buf)-n], nil
}

// textCodec pairs an encoder with its decoder.
type textCodec struct {
	encode func([]byte) string
	decode func(string) ([]byte, error)
}

var (
	base36 = textCodec{encode: codec.EncodeBase36, decode: codec.DecodeBase36}
	base64 = textCodec{encode: codec.EncodeBase64, decode: codec.DecodeBase64}
)

func (c textCodec) encrypt(plain, key, iv string) (string, error) {
	k, err := c.decode(key)
	if err != nil {
		return "", fmt.Errorf("decode key: %w", err)
	}
	v, err := c.decode(iv)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}

	out, err := Encrypt([]byte(plain), k, v)
	if err != nil {
		return "", err
	}
	return c.encode(out), nil
}

func (c textCodec) decrypt(text, key, iv string) (string, error) {
	k, err := c.decode(key)
	if err != nil {
		return "", fmt.Errorf("decode key: %w", err)
	}
	v, err := c.decode(iv)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	data, err := c.decode(text)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	out, err := Decrypt(data, k, v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncryptBase36 encrypts plain with a base36 key and IV and returns base36 ciphertext.
func EncryptBase36(plain, key, iv string) (string, error) { return base36.encrypt(plain, key, iv) }

// DecryptBase36 reverses EncryptBase36.
func DecryptBase36(text, key, iv string) (string, error) { return base36.decrypt(text, key, iv) }

// EncryptBase64 encrypts plain with a base64 key and IV and returns base64 ciphertext.
func EncryptBase64(plain, key, iv string) (string, error) { return base64.encrypt(plain, key, iv) }

// DecryptBase64 reverses EncryptBase64.
func DecryptBase64(text, key, iv string) (string, error) { return base64.decrypt(text, key, iv) }

// GenerateKey returns a random 256-bit key as base36 text.
func GenerateKey() string { return codec.EncodeBase36(random(32)) }

// GenerateIV returns a random 128-bit IV as base36 text.
func GenerateIV() string { return codec.EncodeBase36(random(aes.BlockSize)) }

// DeriveKey stretches a passphrase into a 256-bit key with scrypt.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("empty passphrase: %w", ErrInvalidKey)
	}
	return scrypt.Key([]byte(passphrase), salt, scryptCost, 8, 1, 32)
}

func random(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypt: read random bytes: " + err.Error())
	}
	return b
}
