package models

import (
	"time"
)

type ModerationState string

const (
	StatePending  ModerationState = "pending"
	StateApproved ModerationState = "approved"
	StateRejected ModerationState = "rejected"
)

// ContentItem is a place or an event going through moderation.
//
// Invariants kept by the moderation service:
// State == Rejected implies !Published; RejectionReason != nil iff State == Rejected.
type ContentItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Kind            Kind            `gorm:"size:10;not null;index:idx_content_filters,priority:1;check:chk_content_kind,kind IN ('place','event')" json:"kind"`
	OwnerID         uint            `gorm:"not null;index" json:"ownerId"`
	Name            string          `gorm:"size:200;not null;index" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Address         string          `gorm:"size:255" json:"address,omitempty"`
	Lat             *float64        `json:"lat"`
	Lng             *float64        `json:"lng"`
	Category        string          `gorm:"size:30;not null;index:idx_content_filters,priority:2" json:"category"`
	State           ModerationState `gorm:"size:20;not null;index:idx_content_filters,priority:3" json:"state"`
	Published       bool            `gorm:"not null;index:idx_content_filters,priority:4" json:"published"`
	RejectionReason *string         `gorm:"type:text" json:"rejectionReason"`
	StartsAt        *time.Time      `gorm:"index" json:"startsAt,omitempty"` // events only
	EndsAt          *time.Time      `json:"endsAt,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// 非数据库字段，读取时由 Markdown 渲染填充
	DescriptionHTML string `gorm:"-" json:"descriptionHtml,omitempty"`
}

// Visible reports whether the public may see the item.
func (c *ContentItem) Visible() bool {
	return c.State == StateApproved && c.Published
}

// Categories lists the accepted categories per kind. The first entry is
// not special; "other" is the default.
var Categories = map[Kind][]string{
	KindPlace: {"viewpoint", "bar", "gallery", "shop", "street_art", "square", "other"},
	KindEvent: {"concert", "exhibition", "theatre", "talk", "festival", "other"},
}

const DefaultCategory = "other"

func ValidCategory(kind Kind, category string) bool {
	for _, c := range Categories[kind] {
		if c == category {
			return true
		}
	}
	return false
}
