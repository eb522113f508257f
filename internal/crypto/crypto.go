// Package crypto provides the hashing and key-derivation primitives for the
// state layer: PBKDF2 password hashing parameterized by the per-install salt
// and iteration count, generation of those parameters from a secure random
// source, and HKDF derivation of the SQLCipher store key from the configured
// master key.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// HashKeySize is the PBKDF2 output length in bytes (256 bits).
	HashKeySize = 32

	// StoreKeySize is the derived SQLCipher key length in bytes (256 bits).
	StoreKeySize = 32
)

// HashPassword computes the salted password hash persisted by the store:
// PBKDF2-SHA256 with the per-install salt and iteration count, base64-std.
func HashPassword(password string, salt []byte, iterations int) string {
	key := pbkdf2.Key([]byte(password), salt, iterations, HashKeySize, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// SecureCompare compares two strings in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewSalt returns n cryptographically secure random bytes.
func NewSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// NewIterationCount returns a uniform random int in [min, max).
func NewIterationCount(min, max int) (int, error) {
	if max <= min {
		return 0, fmt.Errorf("invalid iteration range [%d, %d)", min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		return 0, fmt.Errorf("generate iteration count: %w", err)
	}
	return min + int(n.Int64()), nil
}

// NewUnitFloat returns a uniform float64 in [0, 1) from crypto/rand.
// 53 bits of entropy, the full precision of a float64 mantissa.
func NewUnitFloat() (float64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1<<53))
	if err != nil {
		return 0, fmt.Errorf("generate random float: %w", err)
	}
	return float64(n.Int64()) / (1 << 53), nil
}

// DeriveStoreKey derives the 32-byte SQLCipher key from the master key using
// HKDF-SHA256. The info string binds the key to this device for domain
// separation: info = "device:" + deviceID.
func DeriveStoreKey(masterKey []byte, deviceID string) []byte {
	info := "device:" + deviceID
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(info))

	key := make([]byte, StoreKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		// HKDF cannot fail to produce 32 bytes for valid inputs.
		panic(fmt.Sprintf("HKDF failed: %v", err))
	}
	return key
}
