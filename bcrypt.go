package gate

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost factor applied to new credentials. Deliberately
// slow; hashing is one of the two suspension points in this package.
const HashCost = 12

// HashPassword will generate a salted password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the stored hash
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}
