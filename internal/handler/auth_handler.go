package handler

import (
	"errors"
	"net/http"

	"guild/backend/internal/apperr"
	"guild/backend/internal/auth"
	"guild/backend/internal/database"
	"guild/backend/internal/models"
	"guild/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username    string  `json:"username" binding:"required" example:"testuser"`
	Email       string  `json:"email" binding:"required,email" example:"test@example.com"`
	Password    string  `json:"password" binding:"required,min=6" example:"password123"`
	DisplayName *string `json:"displayName" example:"Test User"`
	FullName    *string `json:"fullName" example:"Test McUser"`
	AvatarURL   *string `json:"avatarUrl" example:"https://cdn.example.com/a.png"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// ChangePasswordInput defines the structure for a password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// endregion

func issueAuthResponse(c *gin.Context, status int, user models.User) {
	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to generate token"))
		return
	}

	profile, err := buildPrivateUserResponse(c.Request.Context(), user)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to load user"))
		return
	}

	c.JSON(status, AuthResponse{Token: token, User: profile})
}

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	username := normalizeIdentity(input.Username)
	email := normalizeIdentity(input.Email)
	if username == "" {
		badRequest(c, "Username, email, and password are required")
		return
	}

	db := database.DB.WithContext(c.Request.Context())

	var existing int64
	if err := db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&existing).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error creating user"))
		return
	}
	if existing > 0 {
		respondError(c, apperr.NewConflict("Email or username already exists"))
		return
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to hash password"))
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  optionalString(input.DisplayName),
		FullName:     optionalString(input.FullName),
		AvatarURL:    optionalString(input.AvatarURL),
		Role:         models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, apperr.NewConflict("Email or username already exists"))
			return
		}
		respondError(c, apperr.Wrap(pkgerrors.Wrap(err, "create user"), apperr.Internal, "Error creating user"))
		return
	}

	issueAuthResponse(c, http.StatusCreated, user)
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	var user models.User
	err := database.DB.WithContext(c.Request.Context()).
		Where("email = ?", normalizeIdentity(input.Email)).
		First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Same message and the same bcrypt cost as a wrong password.
		auth.CheckUnknownUser(input.Password)
		respondError(c, apperr.NewUnauthorized("Invalid credentials"))
		return
	case err != nil:
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error during login"))
		return
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		respondError(c, apperr.NewUnauthorized("Invalid credentials"))
		return
	}

	issueAuthResponse(c, http.StatusOK, user)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replaces the authenticated user's password after verifying the current one.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ChangePasswordInput true "Passwords"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Current password is incorrect"
// @Failure      404  {object}  ErrorResponse
// @Router       /auth/change-password [post]
func ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Current password, new password and confirmation are required")
		return
	}

	if input.NewPassword != input.ConfirmPassword {
		badRequest(c, "New password and confirmation do not match")
		return
	}
	if len(input.NewPassword) < auth.MinPasswordLength {
		badRequest(c, "New password must be at least 6 characters long")
		return
	}

	db := database.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.First(&user, "id = ?", auth.CurrentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("User not found"))
			return
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error changing password"))
		return
	}

	if !auth.CheckPassword(user.PasswordHash, input.CurrentPassword) {
		respondError(c, apperr.NewUnauthorized("Current password is incorrect"))
		return
	}

	hashedPassword, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to hash password"))
		return
	}

	if err := db.Model(&user).Update("password_hash", hashedPassword).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error changing password"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}
