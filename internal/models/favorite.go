package models

import (
	"time"
)

// Favorite 收藏 - at most one row per (user, target).
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_favorite_user_target,priority:1" json:"userId"`
	TargetKind Kind      `gorm:"size:10;not null;uniqueIndex:idx_favorite_user_target,priority:2;index:idx_favorite_target,priority:1;check:chk_favorite_kind,target_kind IN ('place','event')" json:"targetKind"`
	TargetID   uint      `gorm:"not null;uniqueIndex:idx_favorite_user_target,priority:3;index:idx_favorite_target,priority:2" json:"targetId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (f Favorite) Target() Target {
	return Target{Kind: f.TargetKind, ID: f.TargetID}
}
