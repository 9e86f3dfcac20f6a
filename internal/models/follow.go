package models

import "time"

// Follow is a single directed edge: FollowerID follows FolloweeID.
// The followers of X are the rows with FolloweeID = X and the users X follows are
// the rows with FollowerID = X, so both directions always agree.
// The composite primary key makes a duplicate follow impossible at the store level.
type Follow struct {
	FollowerID string `gorm:"type:varchar(36);primaryKey"`
	FolloweeID string `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt  time.Time

	Follower User `gorm:"foreignKey:FollowerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Followee User `gorm:"foreignKey:FolloweeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
