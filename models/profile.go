package models

import "time"

// Profile carries the optional personal details of a user. Every user owns
// exactly one profile; it is created together with the account.
type Profile struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	BirthDate *time.Time `json:"birth_date"`
	AvatarURL string     `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
