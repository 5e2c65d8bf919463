package memory

import (
	"context"
	"sync"
	"time"

	"elearning-quiz-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// OTPStore keeps bcrypt-hashed one-time codes per email until they expire.
type OTPStore struct {
	mu    sync.Mutex
	clock func() time.Time
	codes map[string]pendingOTP
}

type pendingOTP struct {
	hash      []byte
	expiresAt time.Time
}

func NewOTPStore() *OTPStore {
	return NewOTPStoreWithClock(time.Now)
}

// NewOTPStoreWithClock is test-only for deterministic expiry.
func NewOTPStoreWithClock(clock func() time.Time) *OTPStore {
	return &OTPStore{clock: clock, codes: make(map[string]pendingOTP)}
}

func (s *OTPStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = pendingOTP{hash: hash, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *OTPStore) Verify(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.codes[email]
	if !ok {
		return domain.ErrOTPMismatch
	}
	if !p.expiresAt.After(s.clock()) {
		delete(s.codes, email)
		return domain.ErrOTPMismatch
	}
	if bcrypt.CompareHashAndPassword(p.hash, []byte(code)) != nil {
		return domain.ErrOTPMismatch
	}
	delete(s.codes, email)
	return nil
}
