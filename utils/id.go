package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// IDAttempts is how many random ids UniqueID tries before giving up.
const IDAttempts = 3

var ErrIDExhausted = errors.New("failed to generate a unique ID")

// GenerateRandomID returns 16 random bytes as 32 hex characters
func GenerateRandomID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// UniqueID draws random ids until exists reports one as free.
func UniqueID(exists func(id string) (bool, error)) (string, error) {
	for i := 0; i < IDAttempts; i++ {
		id, err := GenerateRandomID()
		if err != nil {
			return "", err
		}

		taken, err := exists(id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
