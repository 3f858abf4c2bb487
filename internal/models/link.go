package models

import (
	"time"
)

const (
	LinkTypeCanal = "canal"
	LinkTypeGrupo = "grupo"
)

// ValidLinkType reports whether t is one of the accepted link types. Callers
// normalize (trim + lowercase) before checking.
func ValidLinkType(t string) bool {
	return t == LinkTypeCanal || t == LinkTypeGrupo
}

type Link struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null" json:"user_id"`
	Name       string    `gorm:"not null;size:120" json:"name"`
	URL        string    `gorm:"not null;type:text" json:"url"`
	Type       string    `gorm:"not null;size:10" json:"type"`
	CategoryID *int64    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// LinkView is the joined row shape of the link listing. Username and Category
// are pointers: the owning user or the category may have been deleted since.
type LinkView struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Type     string  `json:"type"`
	Username *string `json:"username"`
	Category *string `json:"category"`
}
