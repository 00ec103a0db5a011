package otpstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unalone/unalone-api/internal/domain"
)

// MemoryStore keeps OTP records in process memory. Records are lost on
// restart and not shared across instances; deployments running more than
// one API process should use the Redis store instead.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.OTPRecord
	stop    chan struct{}
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]domain.OTPRecord),
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the background janitor.
func (s *MemoryStore) Close() {
	close(s.stop)
}

func (s *MemoryStore) Set(_ context.Context, email string, rec domain.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[email] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, email string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	if !ok {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
	return nil
}

// janitor evicts expired records every minute. Verified records are kept
// until their expiry too: verification does not extend the window in
// which registration must complete.
func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
		now := time.Now()
		s.mu.Lock()
		for email, rec := range s.records {
			if rec.Expired(now) {
				delete(s.records, email)
			}
		}
		s.mu.Unlock()
	}
}
