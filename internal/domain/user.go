package domain

import "time"

// Verification status values for User.VerificationStatus.
const (
	VerificationUnverified    = "unverified"
	VerificationEmailVerified = "email_verified"
)

type User struct {
	UserID             string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              *string   `json:"phone,omitempty"`
	PasswordHash       string    `json:"-"`
	VerificationStatus string    `json:"verification_status"`
	AvatarKey          string    `json:"-"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	CreatedAt          time.Time `json:"created"`
	UpdatedAt          time.Time `json:"updated"`
}

// Verified reports whether the user completed email verification.
func (u *User) Verified() bool {
	return u.VerificationStatus == VerificationEmailVerified
}

type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
