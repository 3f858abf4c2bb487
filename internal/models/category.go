package models

import (
	"time"
)

// Category name uniqueness is global. CreatedBy is nullable: the creator may
// delete their account while the category lives on.
type Category struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null;size:120" json:"name"`
	CreatedBy *int64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// CategorySummary is the row shape of the plain category listing.
type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
