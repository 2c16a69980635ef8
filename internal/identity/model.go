package identity

import "time"

// User represents a registered account holder.
type User struct {
	ID           string
	Phone        string
	PasswordHash []byte
	ReferralCode string
	ReferredBy   string
	CreatedAt    time.Time
}

// Credentials carries a signup or login request.
type Credentials struct {
	Phone    string
	Password string
}
