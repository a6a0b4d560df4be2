package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/app"
	"tasktracker/internal/transport/http/middleware"
	"tasktracker/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	log         *slog.Logger
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func NewAuthHandler(authService *app.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.log, err, "Server error during registration")
		return
	}

	response.Created(c, "User registered successfully", gin.H{
		"token": result.Token,
		"user":  result.User.Summary(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.log, err, "Server error during login")
		return
	}

	response.OKMessage(c, "Login successful", gin.H{
		"token": result.Token,
		"user":  result.User.Summary(),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}
	response.OK(c, user.Summary())
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, app.ProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeError(c, h.log, err, "Server error during profile update")
		return
	}
	response.OKMessage(c, "Profile updated successfully", updated.Summary())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		writeError(c, h.log, err, "Server error during logout")
		return
	}
	response.OKMessage(c, "Logged out successfully", nil)
}
