package models

// Category groups ads. Deleting a category removes its ads as well; the
// cascade is performed explicitly by the service layer, not by the database.
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Posts []Post `json:"-"`
}
