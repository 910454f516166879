package models

import "time"

// Post is a sale ad created by a user. AuthorID and PublishedAt are fixed at
// creation time and never change afterwards. An ad becomes publicly listed
// once PublishedAt is not in the future.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"size:1500" json:"description"`
	ImageURL    string    `gorm:"size:512" json:"image_url"`
	CategoryID  uint      `gorm:"index;not null" json:"category_id"`
	Price       float64   `gorm:"not null" json:"price"`
	PublishedAt time.Time `gorm:"index;not null" json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Category    Category  `json:"category"`
	Comments    []Comment `json:"comments,omitempty"`
}
