package models

import "time"

// User mirrors the identity provider's account. The provider owns the data;
// rows are upserted from verified token claims so listings can reference them.
type User struct {
	ID              string    `gorm:"size:255;primaryKey" json:"id"`
	Email           *string   `gorm:"size:255;uniqueIndex" json:"email"`
	FirstName       *string   `gorm:"size:255" json:"firstName"`
	LastName        *string   `gorm:"size:255" json:"lastName"`
	ProfileImageURL *string   `gorm:"type:text" json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
