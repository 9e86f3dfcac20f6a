// Package relation maintains follow relationships between users.
//
// A relationship is one row in the follows table read from both directions, so
// "A is in B's followers" and "B is in A's following" cannot disagree and a
// follow or unfollow is a single write.
package relation

import (
	"context"
	"errors"

	"guild/backend/internal/apperr"
	"guild/backend/internal/models"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserSummary is the lightweight view of a user in follower listings.
type UserSummary struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// Listing is a resolved follower or following list.
type Listing struct {
	Count int           `json:"count"`
	Users []UserSummary `json:"users"`
}

// Manager performs follow operations against the store.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) requireUser(ctx context.Context, userID string) error {
	var count int64
	if err := m.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperr.Wrap(pkgerrors.Wrap(err, "look up user"), apperr.Internal, "Error looking up user")
	}
	if count == 0 {
		return apperr.NewNotFound("User not found")
	}
	return nil
}

// Follow makes actorID follow targetID.
func (m *Manager) Follow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperr.NewInvalidOperation("You cannot follow yourself")
	}
	if err := m.requireUser(ctx, targetID); err != nil {
		return err
	}

	var existing int64
	err := m.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Count(&existing).Error
	if err != nil {
		return apperr.Wrap(pkgerrors.Wrap(err, "check follow"), apperr.Internal, "Error following user")
	}
	if existing > 0 {
		return apperr.NewConflict("You are already following this user")
	}

	edge := models.Follow{FollowerID: actorID, FolloweeID: targetID}
	err = m.db.WithContext(ctx).Create(&edge).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// Lost a race with a concurrent follow of the same pair.
		return apperr.NewConflict("You are already following this user")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.NewNotFound("User not found")
	default:
		return apperr.Wrap(pkgerrors.Wrap(err, "create follow"), apperr.Internal, "Error following user")
	}
}

// Unfollow removes the relationship actorID → targetID.
func (m *Manager) Unfollow(ctx context.Context, actorID, targetID string) error {
	if err := m.requireUser(ctx, targetID); err != nil {
		return err
	}

	result := m.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return apperr.Wrap(pkgerrors.Wrap(result.Error, "delete follow"), apperr.Internal, "Error unfollowing user")
	}
	if result.RowsAffected == 0 {
		return apperr.NewInvalidOperation("You are not following this user")
	}
	return nil
}

// ListFollowers returns the users following userID, most recent first.
func (m *Manager) ListFollowers(ctx context.Context, userID string) (*Listing, error) {
	return m.list(ctx, userID, "follows.follower_id", "follows.followee_id")
}

// ListFollowing returns the users userID follows, most recent first.
func (m *Manager) ListFollowing(ctx context.Context, userID string) (*Listing, error) {
	return m.list(ctx, userID, "follows.followee_id", "follows.follower_id")
}

func (m *Manager) list(ctx context.Context, userID, joinColumn, subjectColumn string) (*Listing, error) {
	if err := m.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	var users []models.User
	err := m.db.WithContext(ctx).
		Joins("JOIN follows ON "+joinColumn+" = users.id").
		Where(subjectColumn+" = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, apperr.Wrap(pkgerrors.Wrap(err, "list follows"), apperr.Internal, "Error fetching users")
	}

	listing := &Listing{Count: len(users), Users: make([]UserSummary, 0, len(users))}
	for _, u := range users {
		listing.Users = append(listing.Users, UserSummary{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
		})
	}
	return listing, nil
}

// Counts returns how many users follow userID and how many it follows.
func (m *Manager) Counts(ctx context.Context, userID string) (followers, following int64, err error) {
	db := m.db.WithContext(ctx).Model(&models.Follow{})
	if err = db.Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, pkgerrors.Wrap(err, "count followers")
	}
	db = m.db.WithContext(ctx).Model(&models.Follow{})
	if err = db.Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, pkgerrors.Wrap(err, "count following")
	}
	return followers, following, nil
}

// IsFollowing reports whether actorID follows targetID.
func (m *Manager) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "check follow")
	}
	return count > 0, nil
}
