package model

import "time"

// Marathon is an event owned by exactly one club. Private marathons are
// visible only to members of the owning club.
type Marathon struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"size:255;not null;index"`
	Date             time.Time `json:"date" gorm:"not null"`
	Location         string    `json:"location,omitempty" gorm:"size:255"`
	RegistrationLink string    `json:"registration_link,omitempty" gorm:"size:512"`
	ClubID           uint      `json:"club_id" gorm:"not null;index"`
	IsPrivate        bool      `json:"is_private" gorm:"not null;default:true"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	Club       Club       `json:"-" gorm:"foreignKey:ClubID"`
	Categories []Category `json:"categories" gorm:"foreignKey:MarathonID"`
}
