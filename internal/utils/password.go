package utils

import "golang.org/x/crypto/bcrypt"

// dummyHash is a bcrypt digest of a random throwaway value at DefaultCost.
// Login runs CheckPassword against it when the email is unknown so that the
// unknown-email and wrong-password paths cost the same.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword returns a salted bcrypt digest of the plaintext password.
// The salt is generated per call and embedded in the digest.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether the plaintext password matches the digest.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// CheckDummyPassword burns the same bcrypt work as a real verification
// without revealing anything; it always returns false.
func CheckDummyPassword(password string) bool {
	bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
	return false
}
