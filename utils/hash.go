package utils

import "golang.org/x/crypto/bcrypt"

const passwordCost = 10

// bcrypt reads at most 72 bytes of input; longer passwords are cut to that
// prefix on both hash and compare instead of being refused.
const maxPasswordBytes = 72

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(passwordBytes(password), passwordCost)
	return string(bytes), err
}

// CheckPasswordHash reads the salt from hashedPassword; the comparison is constant time.
func CheckPasswordHash(password, hashedPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), passwordBytes(password))
	return err == nil
}
