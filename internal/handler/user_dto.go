package handler

import (
	"context"
	"time"

	"guild/backend/internal/models"
)

// PrivateUserResponse is the authenticated user's own profile.
type PrivateUserResponse struct {
	ID             string    `json:"id" example:"5f0c6a3e-8d4b-4c56-9a51-2f1f3c2f7b10"`
	Username       string    `json:"username" example:"testuser"`
	Email          string    `json:"email" example:"test@example.com"`
	DisplayName    *string   `json:"displayName"`
	FullName       *string   `json:"fullName"`
	AvatarURL      *string   `json:"avatarUrl"`
	Role           string    `json:"role" example:"user"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PublicUserResponse is another user's profile as seen by the viewer.
type PublicUserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	DisplayName    *string   `json:"displayName"`
	FullName       *string   `json:"fullName"`
	AvatarURL      *string   `json:"avatarUrl"`
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	IsFollowing    bool      `json:"isFollowing"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string              `json:"token"`
	User  PrivateUserResponse `json:"user"`
}

func buildPrivateUserResponse(ctx context.Context, user models.User) (PrivateUserResponse, error) {
	followers, following, err := relations.Counts(ctx, user.ID)
	if err != nil {
		return PrivateUserResponse{}, err
	}

	return PrivateUserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		DisplayName:    user.DisplayName,
		FullName:       user.FullName,
		AvatarURL:      user.AvatarURL,
		Role:           user.Role,
		FollowersCount: followers,
		FollowingCount: following,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}, nil
}

func buildPublicUserResponse(ctx context.Context, target models.User, viewerID string) (PublicUserResponse, error) {
	followers, following, err := relations.Counts(ctx, target.ID)
	if err != nil {
		return PublicUserResponse{}, err
	}

	isFollowing := false
	if viewerID != "" && viewerID != target.ID {
		if isFollowing, err = relations.IsFollowing(ctx, viewerID, target.ID); err != nil {
			return PublicUserResponse{}, err
		}
	}

	return PublicUserResponse{
		ID:             target.ID,
		Username:       target.Username,
		DisplayName:    target.DisplayName,
		FullName:       target.FullName,
		AvatarURL:      target.AvatarURL,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		CreatedAt:      target.CreatedAt,
	}, nil
}
