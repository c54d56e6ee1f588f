package entity

import "time"

// PasswordResetToken is single-use: it is deleted the moment a reset
// succeeds, and rejected once ExpiresAt has passed.
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
