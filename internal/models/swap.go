package models

import (
	"time"
)

// Swap statuses. Completed and rejected are terminal.
const (
	SwapStatusPending   = "pending"
	SwapStatusCompleted = "completed"
	SwapStatusRejected  = "rejected"
)

// Swap types: a two-item exchange or a point redemption.
const (
	SwapTypeSwap   = "swap"
	SwapTypePoints = "points"
)

// Swap represents an exchange request between two users over one or two items.
// OwnerID is the counterpart: the owner of the requested item. Points is the
// requested item's point value captured at creation so later item edits do
// not rewrite history.
type Swap struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RequesterID     uint      `gorm:"not null;index" json:"requester_id"`
	Requester       *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	OwnerID         uint      `gorm:"not null;index" json:"owner_id"`
	Owner           *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	RequestedItemID uint      `gorm:"not null;index" json:"requested_item_id"`
	RequestedItem   *Item     `gorm:"foreignKey:RequestedItemID" json:"requested_item,omitempty"`
	OfferedItemID   *uint     `gorm:"index" json:"offered_item_id,omitempty"`
	OfferedItem     *Item     `gorm:"foreignKey:OfferedItemID" json:"offered_item,omitempty"`
	Type            string    `gorm:"not null;default:swap" json:"type"`
	Points          int       `gorm:"not null;default:0" json:"points"`
	Status          string    `gorm:"not null;default:pending;index" json:"status"`
	Message         string    `json:"message"`
	Rating          *int      `json:"rating,omitempty"`
	RatingComment   string    `json:"rating_comment,omitempty"`
	RatedByID       *uint     `json:"rated_by_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsTerminal reports whether the swap can no longer change status.
func (s *Swap) IsTerminal() bool {
	return s.Status == SwapStatusCompleted || s.Status == SwapStatusRejected
}

// IsParticipant reports whether userID is the requester or the counterpart.
func (s *Swap) IsParticipant(userID uint) bool {
	return s.RequesterID == userID || s.OwnerID == userID
}

// SwapStats are the aggregates returned with a user's swap history.
type SwapStats struct {
	TotalSwaps    int     `json:"totalSwaps"`
	PointsEarned  int     `json:"pointsEarned"`
	ItemsSaved    int     `json:"itemsSaved"`
	AverageRating float64 `json:"averageRating"`
}

// SwapFilter narrows ListSwaps results.
type SwapFilter struct {
	Status string
	UserID uint
	Limit  int
	Offset int
}
