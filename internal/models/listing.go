package models

import (
	"time"

	"github.com/lib/pq"
)

type PropertyType string

const (
	PropertyType1BHK PropertyType = "1 BHK"
	PropertyType2BHK PropertyType = "2 BHK"
	PropertyType1Bed PropertyType = "1 Bed"
	PropertyType2Bed PropertyType = "2 Bed"
	PropertyType3Bed PropertyType = "3 Bed"
)

var PropertyTypes = []PropertyType{
	PropertyType1BHK, PropertyType2BHK, PropertyType1Bed, PropertyType2Bed, PropertyType3Bed,
}

func (p PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if p == v {
			return true
		}
	}
	return false
}

type TenantPreference string

const (
	TenantBachelor TenantPreference = "Bachelor"
	TenantFamily   TenantPreference = "Family"
	TenantGirls    TenantPreference = "Girls"
	TenantWorking  TenantPreference = "Working"
)

var TenantPreferences = []TenantPreference{
	TenantBachelor, TenantFamily, TenantGirls, TenantWorking,
}

func (t TenantPreference) Valid() bool {
	for _, v := range TenantPreferences {
		if t == v {
			return true
		}
	}
	return false
}

// Listing is a single room/property rental post. OwnerID is set from the
// authenticated subject at insert and never changes afterwards.
type Listing struct {
	ID               int64            `gorm:"primaryKey" json:"id"`
	OwnerID          string           `gorm:"size:255;not null;index" json:"ownerId" validate:"required"`
	Title            string           `gorm:"type:text;not null" json:"title" validate:"required"`
	Description      string           `gorm:"type:text;not null" json:"description"`
	Location         string           `gorm:"type:text;not null" json:"location"`
	Price            int              `gorm:"not null" json:"price" validate:"gt=0"`
	PropertyType     PropertyType     `gorm:"type:property_type;not null" json:"propertyType" validate:"property_type"`
	TenantPreference TenantPreference `gorm:"type:tenant_preference;not null" json:"tenantPreference" validate:"tenant_preference"`
	ImageURLs        pq.StringArray   `gorm:"type:text[];not null" json:"imageUrls"`
	ContactPhone     string           `gorm:"type:text;not null" json:"contactPhone"`
	CreatedAt        time.Time        `json:"createdAt"`
	Owner            *User            `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}
