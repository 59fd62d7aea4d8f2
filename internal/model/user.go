package model

import "time"

// Role is a user's role within their club.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User represents a club member. Club and role are fixed at signup; there is
// no transfer between clubs.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	ClubID       uint      `json:"club_id" gorm:"not null;index"`
	Role         Role      `json:"role" gorm:"size:50;not null;default:'member'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Club Club `json:"-" gorm:"foreignKey:ClubID"`
}
