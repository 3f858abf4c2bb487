package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed, not caller-tunable.
const bcryptCost = 10

// HashPassword hashes a raw password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a raw password against a stored hash. A malformed
// hash counts as a verification failure, never an error.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
