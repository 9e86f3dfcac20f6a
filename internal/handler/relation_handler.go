package handler

import (
	"context"
	"net/http"

	"guild/backend/internal/auth"
	"guild/backend/internal/relation"

	"github.com/gin-gonic/gin"
)

// FollowUser godoc
// @Summary      Follow a user
// @Description  Makes the authenticated user a follower of the target user.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Target User ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse "You cannot follow yourself"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      409  {object}  ErrorResponse "You are already following this user"
// @Router       /users/{id}/follow [post]
func FollowUser(c *gin.Context) {
	if err := relations.Follow(c.Request.Context(), auth.CurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "User followed successfully"})
}

// UnfollowUser godoc
// @Summary      Unfollow a user
// @Description  Removes the authenticated user from the target user's followers.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Target User ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse "You are not following this user"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /users/{id}/unfollow [post]
func UnfollowUser(c *gin.Context) {
	if err := relations.Unfollow(c.Request.Context(), auth.CurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "User unfollowed successfully"})
}

// GetFollowers godoc
// @Summary      List followers
// @Description  Lists the users following the given user.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  relation.Listing
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/followers [get]
func GetFollowers(c *gin.Context) {
	respondListing(c, relations.ListFollowers)
}

// GetFollowing godoc
// @Summary      List followed users
// @Description  Lists the users the given user follows.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  relation.Listing
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/following [get]
func GetFollowing(c *gin.Context) {
	respondListing(c, relations.ListFollowing)
}

func respondListing(c *gin.Context, list func(ctx context.Context, userID string) (*relation.Listing, error)) {
	listing, err := list(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}
