package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for console account passwords.
// Logins are rare (one per token lifetime), so a cost above the library
// default is affordable.
const passwordCost = 12

// HashPassword hashes a plain text password with bcrypt
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks a plain text password against its bcrypt hash.
// Returns nil on match. The comparison handles hashes generated at any
// cost, so raising passwordCost never invalidates stored hashes.
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
