package model

import "time"

// Invitation is a single-use signup code bound to an email and a club.
// It is consumed exactly once at signup (used: false -> true), never deleted.
type Invitation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;size:64;not null"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	ClubID    uint      `json:"club_id" gorm:"not null;index"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Club Club `json:"-" gorm:"foreignKey:ClubID"`
}
