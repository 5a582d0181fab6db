package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the adaptive-hash work factor used for all stored
// password hashes.
const bcryptCost = 10

// HashPassword computes a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
