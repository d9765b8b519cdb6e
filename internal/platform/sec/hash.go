// Copyright (c) 2026 VeriClass. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt work factor for stored credentials.
// bcrypt.DefaultCost (10) keeps login latency acceptable on the small
// instances the identity service runs on.
const passwordHashCost = bcrypt.DefaultCost

// HashPassword derives a bcrypt hash from a plain-text password for storage.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash reports whether the plain-text password matches the
// stored bcrypt hash. It is constant-time with respect to the password.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword)) == nil
}
