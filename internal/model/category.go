package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a priced registration tier within one marathon. Names are
// drawn from a fixed enumeration and are unique per marathon.
type Category struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	MarathonID uint            `json:"marathon_id" gorm:"not null;uniqueIndex:idx_marathon_category_name"`
	Name       string          `json:"name" gorm:"size:100;not null;uniqueIndex:idx_marathon_category_name"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;default:0"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ValidCategoryNames is the fixed set of category names a marathon may offer.
var ValidCategoryNames = []string{
	"3K Run",
	"5K Run",
	"7K Run",
	"10K Run",
	"15K Run",
	"Half Marathon",
	"Full Marathon",
}

// IsValidCategoryName reports whether name belongs to the fixed enumeration.
func IsValidCategoryName(name string) bool {
	for _, n := range ValidCategoryNames {
		if n == name {
			return true
		}
	}
	return false
}
