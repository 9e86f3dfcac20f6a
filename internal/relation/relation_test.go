package relation

import (
	"context"
	"testing"

	"guild/backend/internal/apperr"
	"guild/backend/internal/models"
	"guild/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(l *Listing) []string {
	out := make([]string, 0, len(l.Users))
	for _, u := range l.Users {
		out = append(out, u.ID)
	}
	return out
}

func TestFollowAndUnfollow(t *testing.T) {
	db := testutil.SetupDB(t)
	m := NewManager(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	require.NoError(t, m.Follow(ctx, a.ID, b.ID))

	followers, err := m.ListFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, followers.Count)
	assert.Equal(t, []string{a.ID}, ids(followers))
	assert.Equal(t, "alice", followers.Users[0].Username)

	following, err := m.ListFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, following.Count)
	assert.Equal(t, []string{b.ID}, ids(following))

	// The relationship is directed.
	following, err = m.ListFollowing(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, following.Count)

	nFollowers, nFollowing, err := m.Counts(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, nFollowers)
	assert.EqualValues(t, 0, nFollowing)

	ok, err := m.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Unfollow(ctx, a.ID, b.ID))

	followers, err = m.ListFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, followers.Count)
	assert.NotNil(t, followers.Users)

	following, err = m.ListFollowing(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, following.Count)
}

func TestFollowFailures(t *testing.T) {
	db := testutil.SetupDB(t)
	m := NewManager(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	t.Run("self follow", func(t *testing.T) {
		err := m.Follow(ctx, a.ID, a.ID)
		assert.True(t, apperr.Is(err, apperr.InvalidOperation), err)
	})

	t.Run("unknown target", func(t *testing.T) {
		err := m.Follow(ctx, a.ID, "missing")
		assert.True(t, apperr.Is(err, apperr.NotFound), err)
	})

	t.Run("double follow", func(t *testing.T) {
		require.NoError(t, m.Follow(ctx, a.ID, b.ID))
		err := m.Follow(ctx, a.ID, b.ID)
		assert.True(t, apperr.Is(err, apperr.Conflict), err)

		var edges int64
		require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
		assert.EqualValues(t, 1, edges)
	})

	t.Run("self follow after other follows", func(t *testing.T) {
		err := m.Follow(ctx, b.ID, b.ID)
		assert.True(t, apperr.Is(err, apperr.InvalidOperation), err)
	})
}

func TestUnfollowFailures(t *testing.T) {
	db := testutil.SetupDB(t)
	m := NewManager(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	err := m.Unfollow(ctx, a.ID, b.ID)
	assert.True(t, apperr.Is(err, apperr.InvalidOperation), err)

	err = m.Unfollow(ctx, a.ID, "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound), err)

	// b following a does not let a unfollow b.
	require.NoError(t, m.Follow(ctx, b.ID, a.ID))
	err = m.Unfollow(ctx, a.ID, b.ID)
	assert.True(t, apperr.Is(err, apperr.InvalidOperation), err)
}

func TestListUnknownUser(t *testing.T) {
	db := testutil.SetupDB(t)
	m := NewManager(db)

	_, err := m.ListFollowers(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound), err)
	_, err = m.ListFollowing(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound), err)
}
