package models

import (
	"time"
)

const MaxCommentLength = 1000

// Comment is append-only. AuthorName is the display name from the token at
// the time of writing.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	AuthorName string    `gorm:"size:150" json:"authorName"`
	TargetKind Kind      `gorm:"size:10;not null;index:idx_comment_target,priority:1;check:chk_comment_kind,target_kind IN ('place','event')" json:"targetKind"`
	TargetID   uint      `gorm:"not null;index:idx_comment_target,priority:2" json:"targetId"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (c Comment) Target() Target {
	return Target{Kind: c.TargetKind, ID: c.TargetID}
}
