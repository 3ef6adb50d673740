package models

import (
	"time"

	"gorm.io/gorm"
)

// Item statuses. Anything other than active is hidden from default listings.
const (
	ItemStatusActive  = "active"
	ItemStatusSwapped = "swapped"
	ItemStatusRemoved = "removed"
)

// Item categories and sizes accepted at creation time.
var (
	ItemCategories = []string{"tops", "bottoms", "dresses", "outerwear", "shoes", "accessories"}
	ItemSizes      = []string{"XS", "S", "M", "L", "XL", "XXL", "one-size"}
)

// Item represents a garment listing.
type Item struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text;not null" json:"description"`
	Category    string      `gorm:"not null;index" json:"category"`
	Size        string      `gorm:"not null;index" json:"size"`
	Condition   string      `gorm:"not null" json:"condition"`
	Brand       string      `json:"brand"`
	Color       string      `json:"color"`
	Tags        []string    `gorm:"serializer:json;type:jsonb" json:"tags"`
	PointValue  int         `gorm:"not null;default:0" json:"point_value"`
	Status      string      `gorm:"not null;default:active;index" json:"status"`
	Views       int         `gorm:"not null;default:0" json:"views"`
	OwnerID     uint        `gorm:"not null;index" json:"owner_id"`
	Owner       *User       `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Images      []ItemImage `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"images"`
	// LikesCount is not persisted; derived from the likes ledger at query time.
	LikesCount int `gorm:"->" json:"likes"`
	// Liked indicates whether the current requesting user liked this item (computed)
	Liked bool `gorm:"->" json:"liked"`
	// OwnerRating is the owner's average received swap rating (computed on detail reads).
	OwnerRating float64        `gorm:"->" json:"owner_rating,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ItemImage is one remotely hosted photo of an item. Position preserves
// the upload order.
type ItemImage struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	ItemID   uint   `gorm:"not null;index" json:"-"`
	URL      string `gorm:"not null" json:"url"`
	RemoteID string `gorm:"not null" json:"public_id"`
	Position int    `gorm:"not null;default:0" json:"-"`
}

// Like represents a user's like on an item.
// The combination of UserID and ItemID must be unique; rows are hard
// deleted on unlike so the ledger is the authoritative like count.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_item" json:"user_id"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_user_item" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemFilter narrows ListItems results. Empty or "all" fields are unconstrained.
type ItemFilter struct {
	Category   string
	Size       string
	Status     string
	SearchTerm string
	IncludeAll bool
	Limit      int
	Offset     int
}
