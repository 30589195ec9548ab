package dto

import (
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/lib/pq"
)

// CreateListingRequest is the body of POST /api/listings. There is no owner
// field: the owner always comes from the authenticated subject.
type CreateListingRequest struct {
	Title            string                  `json:"title" validate:"required"`
	Description      string                  `json:"description"`
	Location         string                  `json:"location"`
	Price            int                     `json:"price" validate:"gt=0"`
	PropertyType     models.PropertyType     `json:"propertyType" validate:"property_type"`
	TenantPreference models.TenantPreference `json:"tenantPreference" validate:"tenant_preference"`
	ImageURLs        []string                `json:"imageUrls" validate:"dive,required"`
	ContactPhone     string                  `json:"contactPhone"`
}

// ToListing builds the row to insert for the given owner.
func (r CreateListingRequest) ToListing(ownerID string) models.Listing {
	images := pq.StringArray{}
	if r.ImageURLs != nil {
		images = append(images, r.ImageURLs...)
	}
	return models.Listing{
		OwnerID:          ownerID,
		Title:            r.Title,
		Description:      r.Description,
		Location:         r.Location,
		Price:            r.Price,
		PropertyType:     r.PropertyType,
		TenantPreference: r.TenantPreference,
		ImageURLs:        images,
		ContactPhone:     r.ContactPhone,
	}
}

// UpdateListingRequest is the body of PUT /api/listings/:id. Nil fields are
// left untouched.
type UpdateListingRequest struct {
	Title            *string                  `json:"title,omitempty" validate:"omitnil,min=1"`
	Description      *string                  `json:"description,omitempty"`
	Location         *string                  `json:"location,omitempty"`
	Price            *int                     `json:"price,omitempty" validate:"omitnil,gt=0"`
	PropertyType     *models.PropertyType     `json:"propertyType,omitempty" validate:"omitnil,property_type"`
	TenantPreference *models.TenantPreference `json:"tenantPreference,omitempty" validate:"omitnil,tenant_preference"`
	ImageURLs        *[]string                `json:"imageUrls,omitempty" validate:"omitnil,dive,required"`
	ContactPhone     *string                  `json:"contactPhone,omitempty"`
}

// Changes maps the provided fields to their column names.
func (r UpdateListingRequest) Changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.Title != nil {
		changes["title"] = *r.Title
	}
	if r.Description != nil {
		changes["description"] = *r.Description
	}
	if r.Location != nil {
		changes["location"] = *r.Location
	}
	if r.Price != nil {
		changes["price"] = *r.Price
	}
	if r.PropertyType != nil {
		changes["property_type"] = *r.PropertyType
	}
	if r.TenantPreference != nil {
		changes["tenant_preference"] = *r.TenantPreference
	}
	if r.ImageURLs != nil {
		images := pq.StringArray{}
		changes["image_urls"] = append(images, (*r.ImageURLs)...)
	}
	if r.ContactPhone != nil {
		changes["contact_phone"] = *r.ContactPhone
	}
	return changes
}

// ListingFilter is the optional constraint set of a listing query. A nil
// field imposes no predicate.
type ListingFilter struct {
	Location         *string                  `json:"location,omitempty"`
	MinPrice         *int                     `json:"minPrice,omitempty"`
	MaxPrice         *int                     `json:"maxPrice,omitempty"`
	PropertyType     *models.PropertyType     `json:"propertyType,omitempty" validate:"omitnil,property_type"`
	TenantPreference *models.TenantPreference `json:"tenantPreference,omitempty" validate:"omitnil,tenant_preference"`

	// OwnerID is never read from the query string; handlers set it from the
	// authenticated subject.
	OwnerID *string `json:"-"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
