package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// OTPStore keeps a bcrypt hash of the pending code under otp:{email}; Redis
// expiry enforces the TTL.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(email), hash, ttl).Err(); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	hash, err := s.client.Get(ctx, s.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrOTPMismatch
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(code)) != nil {
		return domain.ErrOTPMismatch
	}
	// Only the first successful verification wins.
	n, err := s.client.Del(ctx, s.key(email)).Result()
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if n == 0 {
		return domain.ErrOTPMismatch
	}
	return nil
}

func (s *OTPStore) key(email string) string {
	return "otp:" + email
}
