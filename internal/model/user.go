package model

import "time"

// User is a person who submitted at least one report. Users are looked up by
// email and created implicitly; the password column is an unused placeholder.
type User struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}

// Admin is an account allowed to manage reported items.
type Admin struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
}
