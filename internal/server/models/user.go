// Package models defines server-side data models persisted in the database.
package models

import "time"

// Credential is the stored login material for one user. Services read it and
// never mutate it.
type Credential struct {
	ID           int64  `db:"id"`
	AccessKey    string `db:"access_key"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Salt         string `db:"salt"`
}

// Account is the insert payload for a new user.
type Account struct {
	AccessKey    string
	Email        string
	PasswordHash string
	Salt         string
	Name         string
}

// User is the profile view of an account. It carries no secrets.
type User struct {
	ID        int64     `db:"id"`
	AccessKey string    `db:"access_key"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
