// Package cryptox implements the encryption engine: passphrase-based
// encryption of vault payloads, password hashing and credential generation.
//
// The payload blob format is base64(salt(16) || iv(16) || ciphertext) with
// AES-256-CBC under a PBKDF2-SHA256 key derived from the passphrase and the
// per-record salt. Derived keys live only for the duration of a call and are
// wiped before returning.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/firevault/firevault/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 16
	keySize  = 32

	// PBKDF2 round counts: payload keys are derived per record and can
	// afford to be slower than the interactive password hash.
	payloadKeyRounds   = 100_000
	passwordHashRounds = 10_000
)

// DeriveKey stretches a passphrase and salt into a 256-bit key.
func DeriveKey(passphrase, salt []byte, rounds int) []byte {
	return pbkdf2.Key(passphrase, salt, rounds, keySize, sha256.New)
}

// Encrypt encrypts plaintext under a key derived from the passphrase and a
// fresh random salt. A fresh IV is generated per call, so encrypting the
// same plaintext twice never yields the same blob.
func Encrypt(plaintext, passphrase string) (string, error) {
	salt, err := MakeRandBytes(saltSize)
	if err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}

	iv, err := MakeRandBytes(aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("iv generation: %w", err)
	}

	key := DeriveKey([]byte(passphrase), salt, payloadKeyRounds)
	defer WipeBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	blob := make([]byte, 0, saltSize+aes.BlockSize+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. It fails with common.ErrDecryptionFailed when
// the passphrase is wrong or the blob is malformed or truncated; it never
// silently returns garbage.
func Decrypt(blob, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", common.ErrDecryptionFailed)
	}

	// salt + iv + at least one cipher block
	if len(raw) < saltSize+2*aes.BlockSize {
		return "", fmt.Errorf("%w: blob too short", common.ErrDecryptionFailed)
	}

	salt := raw[:saltSize]
	iv := raw[saltSize : saltSize+aes.BlockSize]
	ciphertext := raw[saltSize+aes.BlockSize:]

	if len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: truncated ciphertext", common.ErrDecryptionFailed)
	}

	key := DeriveKey([]byte(passphrase), salt, payloadKeyRounds)
	defer WipeBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}

	return string(unpadded), nil
}

// HashPassword derives a storable verifier from a password and salt.
// The raw password is never persisted.
func HashPassword(password string, salt []byte) string {
	hash := DeriveKey([]byte(password), salt, passwordHashRounds)
	defer WipeBytes(hash)
	return base64.StdEncoding.EncodeToString(hash)
}

// MakeSalt returns a fresh random per-account salt.
func MakeSalt() ([]byte, error) {
	return MakeRandBytes(saltSize)
}

// MakeAPIKey generates an opaque bearer credential of the form
// "<username>_<base64(32 random bytes)>".
func MakeAPIKey(username string) (string, error) {
	b, err := MakeRandBytes(32)
	if err != nil {
		return "", err
	}
	return username + "_" + base64.StdEncoding.EncodeToString(b), nil
}

// MakeRandBytes returns size cryptographically random bytes.
func MakeRandBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WipeBytes overwrites the contents of the provided byte slice with zeros.
// This is used to remove key material from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
