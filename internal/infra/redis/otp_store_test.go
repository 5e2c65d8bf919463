package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"elearning-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestOTPStoreVerifyConsumes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewOTPStore(newClient(mr))
	ctx := context.Background()
	if err := store.Save(ctx, "a@b.c", "123456", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Verify(ctx, "a@b.c", "111111"); !errors.Is(err, domain.ErrOTPMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := store.Verify(ctx, "a@b.c", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if mr.Exists("otp:a@b.c") {
		t.Fatalf("expected otp consumed")
	}
}

func TestOTPStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewOTPStore(newClient(mr))
	ctx := context.Background()
	_ = store.Save(ctx, "a@b.c", "123456", time.Minute)
	mr.FastForward(2 * time.Minute)
	if err := store.Verify(ctx, "a@b.c", "123456"); !errors.Is(err, domain.ErrOTPMismatch) {
		t.Fatalf("expected expired otp, got %v", err)
	}
}
