package models

import (
	"time"
)

// Star rating bounds. Votes are 1..5 stars; thumbs up/down is not supported.
const (
	MinVote = 1
	MaxVote = 5
)

// Vote is a user's star rating of a target. One row per (user, target);
// re-voting replaces Value and UpdatedAt.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_vote_user_target,priority:1" json:"userId"`
	TargetKind Kind      `gorm:"size:10;not null;uniqueIndex:idx_vote_user_target,priority:2;index:idx_vote_target,priority:1;check:chk_vote_kind,target_kind IN ('place','event')" json:"targetKind"`
	TargetID   uint      `gorm:"not null;uniqueIndex:idx_vote_user_target,priority:3;index:idx_vote_target,priority:2" json:"targetId"`
	Value      int       `gorm:"not null;check:chk_vote_value,value BETWEEN 1 AND 5" json:"value"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (v Vote) Target() Target {
	return Target{Kind: v.TargetKind, ID: v.TargetID}
}

// VoteSummary is derived on demand. Mean is nil when Count is zero.
type VoteSummary struct {
	Mean  *float64 `json:"mean"`
	Count int64    `json:"count"`
}
