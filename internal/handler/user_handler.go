package handler

import (
	"errors"
	"net/http"
	"strings"

	"guild/backend/internal/apperr"
	"guild/backend/internal/auth"
	"guild/backend/internal/database"
	"guild/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// UpdateProfileInput carries the editable profile fields. Absent fields are
// left untouched; an empty string clears an optional field.
type UpdateProfileInput struct {
	Username    *string `json:"username" example:"newname"`
	Email       *string `json:"email" example:"new@example.com"`
	DisplayName *string `json:"displayName"`
	FullName    *string `json:"fullName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// endregion

func findUser(c *gin.Context, id string) (models.User, bool) {
	var user models.User
	err := database.DB.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("User not found"))
			return user, false
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to load user"))
		return user, false
	}
	return user, true
}

// GetMe godoc
// @Summary      Get current user profile
// @Description  Retrieves the profile of the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	user, ok := findUser(c, auth.CurrentUserID(c))
	if !ok {
		return
	}

	profile, err := buildPrivateUserResponse(c.Request.Context(), user)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to load user"))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary      Update current user profile
// @Description  Updates username, email, display name, full name or avatar of the authenticated user.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile fields"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Email or username already exists"
// @Router       /users/me [put]
func UpdateMe(c *gin.Context) {
	var input UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}

	user, ok := findUser(c, auth.CurrentUserID(c))
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Username != nil {
		username := normalizeIdentity(*input.Username)
		if username == "" {
			badRequest(c, "Username cannot be empty")
			return
		}
		updates["username"] = username
	}
	if input.Email != nil {
		email := normalizeIdentity(*input.Email)
		if email == "" || !strings.Contains(email, "@") {
			badRequest(c, "A valid email is required")
			return
		}
		updates["email"] = email
	}
	if input.DisplayName != nil {
		updates["display_name"] = nullableString(input.DisplayName)
	}
	if input.FullName != nil {
		updates["full_name"] = nullableString(input.FullName)
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = nullableString(input.AvatarURL)
	}

	db := database.DB.WithContext(c.Request.Context())

	if len(updates) > 0 {
		var taken int64
		q := db.Model(&models.User{}).Where("id <> ?", user.ID)
		switch {
		case updates["username"] != nil && updates["email"] != nil:
			q = q.Where("username = ? OR email = ?", updates["username"], updates["email"])
		case updates["username"] != nil:
			q = q.Where("username = ?", updates["username"])
		case updates["email"] != nil:
			q = q.Where("email = ?", updates["email"])
		default:
			q = nil
		}
		if q != nil {
			if err := q.Count(&taken).Error; err != nil {
				respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to update profile"))
				return
			}
			if taken > 0 {
				respondError(c, apperr.NewConflict("Email or username already exists"))
				return
			}
		}

		if err := db.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				respondError(c, apperr.NewConflict("Email or username already exists"))
				return
			}
			respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to update profile"))
			return
		}
	}

	if user, ok = findUser(c, user.ID); !ok {
		return
	}
	profile, err := buildPrivateUserResponse(c.Request.Context(), user)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to load user"))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUserByID godoc
// @Summary      Get a user's profile
// @Description  Retrieves another user's public profile, including follower counts and whether the viewer follows them.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	user, ok := findUser(c, c.Param("id"))
	if !ok {
		return
	}

	profile, err := buildPublicUserResponse(c.Request.Context(), user, auth.CurrentUserID(c))
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to load user"))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// nullableString is optionalString as an update value, with nil meaning NULL.
func nullableString(s *string) interface{} {
	if v := optionalString(s); v != nil {
		return *v
	}
	return nil
}
