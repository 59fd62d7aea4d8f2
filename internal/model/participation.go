package model

import "time"

// Participation links one user to one marathon and one of its categories.
// The (user_id, marathon_id) unique index is the authoritative guard against
// double registration; a race past the application-level check surfaces as a
// duplicate-key error.
type Participation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_marathon"`
	MarathonID   uint      `json:"marathon_id" gorm:"not null;uniqueIndex:idx_user_marathon"`
	CategoryID   uint      `json:"category_id" gorm:"not null;index"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"-"`

	// Relations
	User     User     `json:"-" gorm:"foreignKey:UserID"`
	Marathon Marathon `json:"-" gorm:"foreignKey:MarathonID"`
	Category Category `json:"-" gorm:"foreignKey:CategoryID"`
}

// ParticipantRow is a denormalized participant listing row.
type ParticipantRow struct {
	UserID       uint   `json:"user_id"`
	UserName     string `json:"name"`
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category"`
	MarathonID   uint   `json:"marathon_id"`
	MarathonName string `json:"marathon_name"`
}
