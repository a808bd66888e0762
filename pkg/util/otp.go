package util

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a random six digit code in [100000, 999999].
func GenerateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return 0, err
	}
	return otpMin + int(n.Int64()), nil
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryOTPStore keeps codes in process memory. It is used when Redis is
// disabled and is only correct for a single instance.
type MemoryOTPStore struct {
	mu    sync.Mutex
	codes map[string]otpEntry
	now   func() time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		codes: make(map[string]otpEntry),
		now:   time.Now,
	}
}

func otpKey(purpose, email string) string {
	return purpose + ":" + email
}

// Save stores code for (purpose, email), replacing any previous one.
func (s *MemoryOTPStore) Save(_ context.Context, purpose, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[otpKey(purpose, email)] = otpEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

// Verify reports whether code matches. A matching code is consumed.
func (s *MemoryOTPStore) Verify(_ context.Context, purpose, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := otpKey(purpose, email)
	entry, ok := s.codes[key]
	if !ok {
		return false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.codes, key)
		return false, nil
	}
	if entry.code != code {
		return false, nil
	}
	delete(s.codes, key)
	return true, nil
}

// CleanupExpired drops expired codes and returns how many were removed.
func (s *MemoryOTPStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.codes {
		if now.After(entry.expiresAt) {
			delete(s.codes, key)
			removed++
		}
	}
	return removed
}
