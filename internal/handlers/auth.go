package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/task-service/internal/middleware"
	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/repository"
	"github.com/taskhive/task-service/internal/service"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	jwtService  service.JWTService
	cookies     *CookieHelper
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, jwtService service.JWTService, cookies *CookieHelper) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
		cookies:     cookies,
	}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest represents the login request payload. Login accepts either
// an email address or a username.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents the password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UserResponse is the user shape returned by auth endpoints.
type UserResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create an account and return the user with a signed token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			respondError(c, http.StatusBadRequest, "email already registered")
		case errors.Is(err, repository.ErrDuplicateUsername):
			respondError(c, http.StatusBadRequest, "username already taken")
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondInternal(c, err, "registration failed")
		}
		return
	}

	h.cookies.SetAuthCookie(c, token, h.jwtService.Expiry())
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    newUserResponse(user),
		"token":   token,
	})
}

// Login godoc
// @Summary Login
// @Description Authenticate with email or username plus password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondInternal(c, err, "login failed")
		return
	}

	h.cookies.SetAuthCookie(c, token, h.jwtService.Expiry())
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    newUserResponse(user),
		"token":   token,
	})
}

// Logout godoc
// @Summary Logout
// @Description Clear the auth token cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.ClearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"name":       user.Name,
			"role":       user.Role,
			"is_active":  user.IsActive,
			"created_at": user.CreatedAt,
		},
	})
}

// ChangePassword godoc
// @Summary Change password
// @Description Verify the current password and set a new one
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Password change"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication token required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondInternal(c, err, "password change failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
