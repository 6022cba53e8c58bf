package cryptox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/firevault/firevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	plaintexts := []string{
		"4111-1111-1111-1111",
		"",
		"multi\nline\nnote with unicode: ключ",
		strings.Repeat("x", 1000),
	}

	for _, p := range plaintexts {
		blob, err := Encrypt(p, "correct horse")
		require.NoError(t, err)

		got, err := Decrypt(blob, "correct horse")
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestEncrypt_SamePlaintextDifferentBlobs(t *testing.T) {
	b1, err := Encrypt("secret", "pw")
	require.NoError(t, err)
	b2, err := Encrypt("secret", "pw")
	require.NoError(t, err)

	// fresh salt and IV per call
	assert.NotEqual(t, b1, b2)
}

func TestDecrypt_WrongPassphrase(t *testing.T) {
	blob, err := Encrypt("top secret", "right")
	require.NoError(t, err)

	_, err = Decrypt(blob, "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDecryptionFailed))
}

func TestDecrypt_MalformedBlob(t *testing.T) {
	cases := map[string]string{
		"not base64":  "%%%not-base64%%%",
		"too short":   base64.StdEncoding.EncodeToString([]byte("short")),
		"empty":       "",
		"no payload":  base64.StdEncoding.EncodeToString(make([]byte, 32)),
		"odd length":  base64.StdEncoding.EncodeToString(make([]byte, 32+17)),
		"cut in half": "",
	}

	full, err := Encrypt("some data", "pw")
	require.NoError(t, err)
	cases["cut in half"] = full[:len(full)/2]

	for name, blob := range cases {
		_, err := Decrypt(blob, "pw")
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, common.ErrDecryptionFailed), name)
	}
}

func TestBlobFormat(t *testing.T) {
	blob, err := Encrypt("abc", "pw")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	// salt(16) || iv(16) || ciphertext, ciphertext in whole blocks
	require.GreaterOrEqual(t, len(raw), 48)
	assert.Equal(t, 0, (len(raw)-32)%16)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := DeriveKey([]byte("pw"), []byte("salt"), 1000)
	k2 := DeriveKey([]byte("pw"), []byte("salt"), 1000)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)

	k3 := DeriveKey([]byte("pw"), []byte("other"), 1000)
	assert.NotEqual(t, k1, k3)
}

func TestHashPassword(t *testing.T) {
	salt, err := MakeSalt()
	require.NoError(t, err)

	h1 := HashPassword("pw1", salt)
	h2 := HashPassword("pw1", salt)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, HashPassword("pw2", salt))

	otherSalt, err := MakeSalt()
	require.NoError(t, err)
	assert.NotEqual(t, h1, HashPassword("pw1", otherSalt))
}

func TestMakeAPIKey_Format(t *testing.T) {
	key, err := MakeAPIKey("alice")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(key, "alice_"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(key, "alice_"))
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other, err := MakeAPIKey("alice")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestWipeBytes(t *testing.T) {
	b := []byte{1, 2, 3}
	WipeBytes(b)
	assert.True(t, bytes.Equal(b, []byte{0, 0, 0}))

	WipeBytes(nil) // must not panic
}
