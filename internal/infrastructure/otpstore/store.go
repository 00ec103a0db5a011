// Package otpstore holds one-time email verification codes between the
// send-otp request and registration. The store is a TTL key-value map
// keyed by email; Set overwrites any existing record so at most one
// unconsumed code exists per address.
package otpstore

import (
	"context"

	"github.com/unalone/unalone-api/internal/domain"
)

// Store abstracts the OTP backing store so the single-process map can be
// swapped for Redis without changing call sites.
type Store interface {
	// Set stores the record under email, replacing any existing one.
	Set(ctx context.Context, email string, rec domain.OTPRecord) error
	// Get returns the record for email, or domain.ErrNotFound.
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	// Delete removes the record for email. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context, email string) error
}
