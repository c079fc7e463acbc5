// Package models defines server-side rows persisted in the database.
package models

import "time"

// User is an account. Verifier is the argon2id hash of the password with Salt.
type User struct {
	ID        string
	Email     string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
