package utils

import "golang.org/x/crypto/bcrypt"

// Confirmation codes are emailed during signup and exchanged for an
// access token. Only a bcrypt hash is stored, so a leaked users table
// does not hand out working codes.

// codeBytes gives 32 hex characters per code.
const codeBytes = 16

// NewConfirmationCode returns a fresh random code to email to the user.
func NewConfirmationCode() (string, error) {
	return randomHex(codeBytes)
}

// HashCode returns the bcrypt hash of a confirmation code for storage.
func HashCode(code string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyCode safely compares a stored hash with a presented code. An
// empty hash (code already used or never issued) never verifies.
func VerifyCode(hash, code string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
