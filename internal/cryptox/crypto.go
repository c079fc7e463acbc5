// Package cryptox derives and checks password verifiers with argon2id.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of salts produced by NewSalt.
const SaltSize = 32

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveVerifier stretches password with salt into a 32-byte verifier.
func DeriveVerifier(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// CheckPassword reports whether password matches verifier under salt.
// The comparison is constant-time.
func CheckPassword(password, salt, verifier []byte) bool {
	candidate := DeriveVerifier(password, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}
