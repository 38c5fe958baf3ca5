package security

import "golang.org/x/crypto/bcrypt"

// UnusablePassword is the sentinel stored for accounts provisioned without
// login capability. Verification against it always fails.
const UnusablePassword = "unusable_password"

// HashPassword returns a salted bcrypt digest of the plaintext. The salt is
// per-call, so hashing the same plaintext twice yields different digests.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
func CheckPassword(plaintext, digest string) bool {
	if digest == UnusablePassword {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
