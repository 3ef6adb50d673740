// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the ReWear application.
// Email and Password are never serialized; listings expose only the
// public display fields (name, profile pic, location).
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"not null" json:"name"`
	Email      string         `gorm:"unique;not null" json:"-"`
	Password   string         `gorm:"not null" json:"-"`
	ProfilePic string         `json:"profile_pic"`
	Location   string         `json:"location"`
	Bio        string         `json:"bio,omitempty"`
	IsAdmin    bool           `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicColumns are the owner fields embedded in listing and swap responses.
func (User) PublicColumns() []string {
	return []string{"id", "name", "profile_pic", "location"}
}
