package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/internal/features/user"
	"github.com/skillora/skillora-server/internal/middleware"
	"github.com/skillora/skillora-server/internal/utils/jwt"
	"github.com/skillora/skillora-server/pkg/request"
	"github.com/skillora/skillora-server/pkg/response"
	"github.com/skillora/skillora-server/pkg/types"
	"github.com/skillora/skillora-server/pkg/validation"
)

// Handler serves registration, login and account endpoints.
type Handler struct {
	db        *gorm.DB
	logger    *slog.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

// NewHandler creates an auth handler.
func NewHandler(db *gorm.DB, logger *slog.Logger, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{db: db, logger: logger, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type authPayload struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// Register creates a new account and returns a signed token for it.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "All fields are required", nil)
		return
	}

	if !validation.ValidEmail(req.Email) {
		response.Error(c, http.StatusBadRequest, "Invalid email address", nil)
		return
	}

	usr, err := user.Create(h.db, user.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      types.Role(req.Role),
	})
	if err != nil {
		h.respondError(c, err, "Failed to register user")
		return
	}

	token, err := jwt.GenerateToken(usr.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to register user", err)
		return
	}

	response.Created(c, authPayload{User: usr, Token: token}, "User registered successfully")
}

// Login verifies credentials and returns a signed token. The failure
// message never distinguishes a missing account from a wrong password.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	usr, err := user.GetByEmail(h.db, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Error(c, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to log in", err)
		return
	}

	if !usr.ComparePassword(req.Password) {
		response.Error(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if err := user.TouchLastLogin(h.db, usr.ID); err != nil {
		h.logger.WarnContext(c.Request.Context(), "failed to stamp last login", slog.String("error", err.Error()))
	}

	token, err := jwt.GenerateToken(usr.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to log in", err)
		return
	}

	response.Success(c, http.StatusOK, authPayload{User: usr, Token: token}, "Login successful", nil)
}

// Me returns the authenticated user's account.
func (h *Handler) Me(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// UpdateProfile merges submitted profile fields into the account. Absent
// keys keep their current values.
func (h *Handler) UpdateProfile(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	var input user.ProfileInput
	if raw, exists := body["firstName"]; exists {
		value, err := request.ReadString(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "First name must be a non-empty string", nil)
			return
		}
		input.FirstName = &value
	}
	if raw, exists := body["lastName"]; exists {
		value, err := request.ReadString(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Last name must be a non-empty string", nil)
			return
		}
		input.LastName = &value
	}
	if raw, exists := body["bio"]; exists {
		value, err := request.ReadStringAllowEmpty(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Bio must be a string", nil)
			return
		}
		input.Bio = &value
	}

	updated, err := user.UpdateProfile(h.db, usr.ID, input)
	if err != nil {
		h.respondError(c, err, "Failed to update profile")
		return
	}

	response.Success(c, http.StatusOK, updated, "Profile updated successfully", nil)
}

// UpdatePassword changes the account password after re-verifying the
// current one.
func (h *Handler) UpdatePassword(c *gin.Context) {
	usr, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Current and new passwords are required", nil)
		return
	}

	if !usr.ComparePassword(req.CurrentPassword) {
		response.Error(c, http.StatusUnauthorized, "Current password is incorrect", nil)
		return
	}

	if err := user.ChangePassword(h.db, usr.ID, req.NewPassword); err != nil {
		h.respondError(c, err, "Failed to update password")
		return
	}

	response.Success(c, http.StatusOK, nil, "Password updated successfully", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		response.Error(c, http.StatusConflict, "User already exists", nil)
	case errors.Is(err, user.ErrInvalidPassword):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, user.ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "Role must be student or instructor", nil)
	case errors.Is(err, user.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "User not found", nil)
	default:
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, fallback, err)
	}
}
