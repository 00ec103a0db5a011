package domain

import "time"

// OTPRecord is a one-time email verification code, keyed by email in the
// OTP store. A later send overwrites an earlier record; there is at most
// one unconsumed record per email.
type OTPRecord struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
}

// Expired reports whether the code can no longer be verified.
func (r *OTPRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
