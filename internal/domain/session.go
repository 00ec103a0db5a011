package domain

import "time"

// Session is a server-tracked long-lived credential. Its ID is an opaque
// random token handed to the client as an http-only cookie; it never
// appears inside a JWT.
type Session struct {
	SessionID string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created"`
	User      *User     `json:"user,omitempty"`
}

// Expired reports whether the session is past its fixed expiry.
// Expiry is not extended on refresh.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
