// File: internal/services/user_services/password.go
package user_services

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a salted bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is a
// non-match.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
