package entity

import "time"

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash, never the plain text.
// Avatar holds the raw uploaded bytes; it is optional.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Avatar    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
