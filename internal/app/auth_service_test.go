package app_test

import (
	"context"
	"testing"
	"time"

	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/auth"
	"elearning-quiz-service/internal/domain"
	"elearning-quiz-service/internal/infra/memory"
)

func newAuthService() (*app.AuthService, *memory.UserStore, *recordingNotifier) {
	users := memory.NewUserStore()
	notifier := &recordingNotifier{}
	tokens := auth.NewIssuer("test-secret", time.Minute, time.Hour)
	return app.NewAuthService(users, memory.NewOTPStore(), notifier, tokens, 5*time.Minute), users, notifier
}

func lastOTP(t *testing.T, n *recordingNotifier) string {
	t.Helper()
	mails := n.sent()
	if len(mails) == 0 {
		t.Fatalf("expected an otp mail")
	}
	m := mails[len(mails)-1]
	if m.Template != "otp" {
		t.Fatalf("expected otp template, got %q", m.Template)
	}
	code, _ := m.Variables["otp"].(string)
	if len(code) != 6 {
		t.Fatalf("expected 6 digit otp, got %q", code)
	}
	return code
}

func registerActive(t *testing.T, svc *app.AuthService, n *recordingNotifier) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.Register(ctx, app.RegisterRequest{Username: "bob", Email: "Bob@Example.com", Password: "s3cret", FullName: "Bob"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.VerifyOTP(ctx, "bob@example.com", lastOTP(t, n)); err != nil {
		t.Fatalf("verify otp: %v", err)
	}
}

func TestRegisterVerifyLogin(t *testing.T) {
	svc, users, n := newAuthService()
	ctx := context.Background()

	res, err := svc.Register(ctx, app.RegisterRequest{Username: "bob", Email: "Bob@Example.com", Password: "s3cret", FullName: "Bob"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Status != domain.UserStatusPending || res.Email != "bob@example.com" {
		t.Fatalf("unexpected register result %+v", res)
	}
	if _, err := svc.Login(ctx, "bob", "s3cret"); domain.CodeOf(err) != domain.CodeUserNotActive {
		t.Fatalf("expected USER_NOT_ACTIVE before verification, got %v", err)
	}

	verified, err := svc.VerifyOTP(ctx, "bob@example.com", lastOTP(t, n))
	if err != nil || !verified.IsVerifyDone {
		t.Fatalf("verify otp: %+v %v", verified, err)
	}
	u, _ := users.FindByUsername(ctx, "bob")
	if u.Status != domain.UserStatusActive || u.Password == "s3cret" {
		t.Fatalf("unexpected stored user %+v", u)
	}

	tokens, err := svc.Login(ctx, "bob", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", tokens)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()
	req := app.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register: %v", err)
	}
	req.Username = "bobby"
	if _, err := svc.Register(ctx, req); domain.CodeOf(err) != domain.CodeUserExist {
		t.Fatalf("expected USER_EXIST for taken email, got %v", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, _, n := newAuthService()
	ctx := context.Background()
	_, _ = svc.Register(ctx, app.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw"})
	code := lastOTP(t, n)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if _, err := svc.VerifyOTP(ctx, "bob@example.com", wrong); domain.CodeOf(err) != domain.CodeOTPIncorrect {
		t.Fatalf("expected OTP_INCORRECT, got %v", err)
	}
	if _, err := svc.VerifyOTP(ctx, "nobody@example.com", code); domain.CodeOf(err) != domain.CodeUserNotFound {
		t.Fatalf("expected USER_NOT_FOUND, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _, n := newAuthService()
	registerActive(t, svc, n)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "nobody", "pw"); domain.CodeOf(err) != domain.CodeUserNotFound {
		t.Fatalf("expected USER_NOT_FOUND, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "wrong"); domain.CodeOf(err) != domain.CodePasswordIncorrect {
		t.Fatalf("expected PASSWORD_INCORRECT, got %v", err)
	}
}

func TestForgotPasswordFlow(t *testing.T) {
	svc, _, n := newAuthService()
	registerActive(t, svc, n)
	ctx := context.Background()

	if err := svc.SendOTPForgotPassword(ctx, "bob@example.com"); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	if _, err := svc.VerifyOTPForgotPassword(ctx, "bob@example.com", lastOTP(t, n), "n3w"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "s3cret"); domain.CodeOf(err) != domain.CodePasswordIncorrect {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "n3w"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, n := newAuthService()
	registerActive(t, svc, n)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "bob", "wrong", "x"); domain.CodeOf(err) != domain.CodePasswordIncorrect {
		t.Fatalf("expected PASSWORD_INCORRECT, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "bob", "s3cret", "x"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "x"); err != nil {
		t.Fatalf("login after change: %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	svc, _, n := newAuthService()
	registerActive(t, svc, n)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "bob", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, pair.AccessToken); domain.CodeOf(err) != domain.CodeUnauthorized {
		t.Fatalf("access token must not refresh, got %v", err)
	}
	if _, err := svc.RefreshToken(ctx, "garbage"); domain.CodeOf(err) != domain.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestChangeProfile(t *testing.T) {
	svc, _, n := newAuthService()
	registerActive(t, svc, n)
	ctx := context.Background()

	if _, err := svc.ChangeProfile(ctx, "bob", "Bob B", "123", domain.Gender("ROBOT")); domain.CodeOf(err) != domain.CodeInvalidData {
		t.Fatalf("expected INVALID_DATA, got %v", err)
	}
	res, err := svc.ChangeProfile(ctx, "bob", "Bob B", "123", domain.GenderMale)
	if err != nil {
		t.Fatalf("change profile: %v", err)
	}
	if res.FullName != "Bob B" || res.Gender != domain.GenderMale {
		t.Fatalf("unexpected profile %+v", res)
	}
	u, err := svc.GetUserByEmail(ctx, "BOB@example.com")
	if err != nil || u.Phone != "123" {
		t.Fatalf("unexpected user %+v %v", u, err)
	}
}
