package http

import (
	"elearning-quiz-service/internal/app"
	"elearning-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *app.AuthService
}

func NewAuthHandler(service *app.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"max=100"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type profileRequest struct {
	FullName string `json:"fullName" binding:"required,max=100"`
	Phone    string `json:"phoneNum" binding:"max=20"`
	Gender   string `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Register(c.Request.Context(), app.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	respond(c, res, err, "Create user success")
}

func (h *AuthHandler) GetOTP(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.service.GetOTP(c.Request.Context(), req.Email)
	respond[any](c, nil, err, "Send OTP success")
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	respond(c, res, err, "Verify OTP success")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	respond(c, res, err, "Login success")
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.service.SendOTPForgotPassword(c.Request.Context(), req.Email)
	respond[any](c, nil, err, "Send OTP success")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.VerifyOTPForgotPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword)
	respond(c, res, err, "Reset password success")
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	respond(c, res, err, "Refresh token success")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.service.ChangePassword(c.Request.Context(), username(c), req.OldPassword, req.NewPassword)
	respond[any](c, nil, err, "Change password success")
}

func (h *AuthHandler) ChangeProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.ChangeProfile(c.Request.Context(), username(c), req.FullName, req.Phone, domain.Gender(req.Gender))
	respond(c, res, err, "Change profile success")
}

func (h *AuthHandler) GetUserByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		abortWith(c, domain.WithMessage(domain.CodeInvalidData, "email is required"))
		return
	}
	res, err := h.service.GetUserByEmail(c.Request.Context(), email)
	respond(c, res, err, "")
}
