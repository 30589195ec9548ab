package registry

import (
	"net/url"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/validation"
)

// Query parameter names of the list operation.
const (
	ParamLocation         = "location"
	ParamMinPrice         = "minPrice"
	ParamMaxPrice         = "maxPrice"
	ParamPropertyType     = "propertyType"
	ParamTenantPreference = "tenantPreference"
)

// EncodeFilter renders the present filters as query values. OwnerID is
// never encoded.
func EncodeFilter(f dto.ListingFilter) url.Values {
	q := url.Values{}
	if f.Location != nil && *f.Location != "" {
		q.Set(ParamLocation, *f.Location)
	}
	if f.MinPrice != nil {
		q.Set(ParamMinPrice, strconv.Itoa(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		q.Set(ParamMaxPrice, strconv.Itoa(*f.MaxPrice))
	}
	if f.PropertyType != nil && *f.PropertyType != "" {
		q.Set(ParamPropertyType, string(*f.PropertyType))
	}
	if f.TenantPreference != nil && *f.TenantPreference != "" {
		q.Set(ParamTenantPreference, string(*f.TenantPreference))
	}
	return q
}

// ParseFilter reads the list filters through get (a query accessor).
// Empty values count as absent.
func ParseFilter(get func(key string) string) (dto.ListingFilter, *validation.FieldError) {
	var f dto.ListingFilter

	if v := get(ParamLocation); v != "" {
		f.Location = &v
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{
		{ParamMinPrice, &f.MinPrice},
		{ParamMaxPrice, &f.MaxPrice},
	} {
		raw := get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return dto.ListingFilter{}, &validation.FieldError{Field: p.name, Message: p.name + " must be an integer"}
		}
		*p.dst = &n
	}
	if v := get(ParamPropertyType); v != "" {
		pt := models.PropertyType(v)
		f.PropertyType = &pt
	}
	if v := get(ParamTenantPreference); v != "" {
		tp := models.TenantPreference(v)
		f.TenantPreference = &tp
	}

	if fe := validation.Struct(f); fe != nil {
		return dto.ListingFilter{}, fe
	}
	return f, nil
}
