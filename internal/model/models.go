package model

import "time"

// User is the authenticated profile plus its durable per-user state. Favorites
// and recent views are stored as JSON-encoded id lists; corrupt JSON at either
// column is treated as absent rather than fatal.
type User struct {
	ID              string    `gorm:"primaryKey;size:36"`
	Email           string    `gorm:"uniqueIndex;not null;size:320"`
	Name            string    `gorm:"size:200"`
	Role            string    `gorm:"size:64"`
	FavoritesJSON   string    `gorm:"size:4000"`
	RecentViewsJSON string    `gorm:"size:4000"`
	NotepadText     string    `gorm:"size:65535"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}
