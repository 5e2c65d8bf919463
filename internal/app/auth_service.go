package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"elearning-quiz-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const otpTemplate = "otp"

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user domain.User) (access, refresh string, err error)
	ParseRefresh(token string) (username string, err error)
}

type AuthService struct {
	users    UserRepository
	otps     OTPStore
	notifier Notifier
	tokens   TokenIssuer
	otpTTL   time.Duration
	now      func() time.Time
}

func NewAuthService(users UserRepository, otps OTPStore, notifier Notifier, tokens TokenIssuer, otpTTL time.Duration) *AuthService {
	return &AuthService{users: users, otps: otps, notifier: notifier, tokens: tokens, otpTTL: otpTTL, now: time.Now}
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

type RegisterResult struct {
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Status   domain.UserStatus `json:"status"`
}

type TokenResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
}

type VerifyOTPResult struct {
	IsVerifyDone bool `json:"isVerifyDone"`
}

type ProfileResult struct {
	FullName string        `json:"fullName"`
	Phone    string        `json:"phoneNum"`
	Gender   domain.Gender `json:"gender"`
}

// Register creates a pending account and mails a verification code.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if username == "" || email == "" || req.Password == "" {
		return RegisterResult{}, domain.NewError(domain.CodeInvalidData)
	}
	for _, lookup := range []func() error{
		func() error { _, err := s.users.FindByUsername(ctx, username); return err },
		func() error { _, err := s.users.FindByEmail(ctx, email); return err },
	} {
		err := lookup()
		if err == nil {
			return RegisterResult{}, domain.NewError(domain.CodeUserExist)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("register %q: lookup: %v", username, err)
			return RegisterResult{}, domain.Fail("Create user fail", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResult{}, domain.Fail("Create user fail", err)
	}
	now := s.now()
	user := domain.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		FullName:  req.FullName,
		Status:    domain.UserStatusPending,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return RegisterResult{}, domain.NewError(domain.CodeUserExist)
		}
		log.Printf("register %q: insert: %v", username, err)
		return RegisterResult{}, domain.Fail("Create user fail", err)
	}
	if err := s.issueOTP(ctx, user); err != nil {
		log.Printf("register %q: issue otp: %v", username, err)
	}
	return RegisterResult{Username: user.Username, Email: user.Email, Status: user.Status}, nil
}

// GetOTP mails a fresh code to the account behind email.
func (s *AuthService) GetOTP(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, "get otp", email)
	if err != nil {
		return err
	}
	if err := s.issueOTP(ctx, user); err != nil {
		log.Printf("get otp %s: %v", email, err)
		return domain.Fail("Get OTP fail", err)
	}
	return nil
}

// VerifyOTP consumes the code and activates the account.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (VerifyOTPResult, error) {
	user, err := s.userByEmail(ctx, "verify otp", email)
	if err != nil {
		return VerifyOTPResult{}, err
	}
	if err := s.checkOTP(ctx, user.Email, otp); err != nil {
		return VerifyOTPResult{}, err
	}
	user.Status = domain.UserStatusActive
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, &user); err != nil {
		log.Printf("verify otp %s: activate: %v", email, err)
		return VerifyOTPResult{}, domain.Fail("Verify OTP fail", err)
	}
	return VerifyOTPResult{IsVerifyDone: true}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (TokenResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return TokenResult{}, domain.NewError(domain.CodeUserNotFound)
	}
	if err != nil {
		log.Printf("login %q: lookup: %v", username, err)
		return TokenResult{}, domain.Fail("Login fail", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return TokenResult{}, domain.NewError(domain.CodePasswordIncorrect)
	}
	if user.Status != domain.UserStatusActive {
		return TokenResult{}, domain.NewError(domain.CodeUserNotActive)
	}
	return s.tokenPair(user, "Login success")
}

// SendOTPForgotPassword mails a code used to reset the password.
func (s *AuthService) SendOTPForgotPassword(ctx context.Context, email string) error {
	return s.GetOTP(ctx, email)
}

// VerifyOTPForgotPassword checks the code and replaces the password.
func (s *AuthService) VerifyOTPForgotPassword(ctx context.Context, email, otp, newPassword string) (VerifyOTPResult, error) {
	user, err := s.userByEmail(ctx, "reset password", email)
	if err != nil {
		return VerifyOTPResult{}, err
	}
	if newPassword == "" {
		return VerifyOTPResult{}, domain.NewError(domain.CodeInvalidData)
	}
	if err := s.checkOTP(ctx, user.Email, otp); err != nil {
		return VerifyOTPResult{}, err
	}
	if err := s.setPassword(ctx, &user, newPassword); err != nil {
		log.Printf("reset password %s: %v", email, err)
		return VerifyOTPResult{}, domain.Fail("Reset password fail", err)
	}
	return VerifyOTPResult{IsVerifyDone: true}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.CodeUserNotFound)
	}
	if err != nil {
		log.Printf("change password %q: lookup: %v", username, err)
		return domain.Fail("Change password fail", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return domain.NewError(domain.CodePasswordIncorrect)
	}
	if newPassword == "" {
		return domain.NewError(domain.CodeInvalidData)
	}
	if err := s.setPassword(ctx, &user, newPassword); err != nil {
		log.Printf("change password %q: %v", username, err)
		return domain.Fail("Change password fail", err)
	}
	return nil
}

// RefreshToken exchanges a valid refresh token for a new pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (TokenResult, error) {
	username, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return TokenResult{}, domain.NewError(domain.CodeUnauthorized)
	}
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return TokenResult{}, domain.NewError(domain.CodeUserNotFound)
	}
	if err != nil {
		log.Printf("refresh token %q: lookup: %v", username, err)
		return TokenResult{}, domain.Fail("Refresh token fail", err)
	}
	return s.tokenPair(user, "Refresh token success")
}

func (s *AuthService) ChangeProfile(ctx context.Context, username, fullName, phone string, gender domain.Gender) (ProfileResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return ProfileResult{}, domain.NewError(domain.CodeUserNotFound)
	}
	if err != nil {
		log.Printf("change profile %q: lookup: %v", username, err)
		return ProfileResult{}, domain.Fail("Change profile failed", err)
	}
	if !gender.Valid() || strings.TrimSpace(fullName) == "" {
		return ProfileResult{}, domain.NewError(domain.CodeInvalidData)
	}
	user.FullName = strings.TrimSpace(fullName)
	user.Phone = strings.TrimSpace(phone)
	user.Gender = gender
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, &user); err != nil {
		log.Printf("change profile %q: write: %v", username, err)
		return ProfileResult{}, domain.Fail("Change profile failed", err)
	}
	return ProfileResult{FullName: user.FullName, Phone: user.Phone, Gender: user.Gender}, nil
}

func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.userByEmail(ctx, "get user by email", email)
}

func (s *AuthService) userByEmail(ctx context.Context, op, email string) (domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.NewError(domain.CodeUserNotFound)
	}
	if err != nil {
		log.Printf("%s %s: lookup: %v", op, email, err)
		return domain.User{}, domain.Fail(op+" failed", err)
	}
	return user, nil
}

func (s *AuthService) checkOTP(ctx context.Context, email, otp string) error {
	err := s.otps.Verify(ctx, email, strings.TrimSpace(otp))
	if errors.Is(err, domain.ErrOTPMismatch) {
		return domain.NewError(domain.CodeOTPIncorrect)
	}
	if err != nil {
		log.Printf("check otp %s: %v", email, err)
		return domain.Fail("Verify OTP fail", err)
	}
	return nil
}

func (s *AuthService) issueOTP(ctx context.Context, user domain.User) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.Save(ctx, user.Email, code, s.otpTTL); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return s.notifier.Send(ctx, domain.Mail{
		To:        user.Email,
		Subject:   "Your verification code",
		Template:  otpTemplate,
		Variables: map[string]any{"otp": code, "username": user.Username},
	})
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	user.UpdatedAt = s.now()
	return s.users.Update(ctx, user)
}

func (s *AuthService) tokenPair(user domain.User, msg string) (TokenResult, error) {
	access, refresh, err := s.tokens.Issue(user)
	if err != nil {
		log.Printf("issue tokens for %q: %v", user.Username, err)
		return TokenResult{}, domain.Fail("Issue token fail", err)
	}
	return TokenResult{AccessToken: access, RefreshToken: refresh, Message: msg}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
