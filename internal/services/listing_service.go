package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"gorm.io/gorm"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingStore is the persistence contract the handlers depend on.
type ListingStore interface {
	List(ctx context.Context, filter dto.ListingFilter) ([]models.Listing, error)
	Get(ctx context.Context, id int64) (*models.Listing, error)
	Create(ctx context.Context, req dto.CreateListingRequest, ownerID string) (*models.Listing, error)
	Update(ctx context.Context, id int64, req dto.UpdateListingRequest) (*models.Listing, error)
	Delete(ctx context.Context, id int64) error
}

type ListingService struct {
	db *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FilterListings returns a GORM scope that ANDs every present filter.
func FilterListings(f dto.ListingFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Location != nil && *f.Location != "" {
			db = db.Where("location LIKE ?", "%"+likeEscaper.Replace(*f.Location)+"%")
		}
		if f.MinPrice != nil {
			db = db.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("price <= ?", *f.MaxPrice)
		}
		if f.PropertyType != nil {
			db = db.Where("property_type = ?", string(*f.PropertyType))
		}
		if f.TenantPreference != nil {
			db = db.Where("tenant_preference = ?", string(*f.TenantPreference))
		}
		if f.OwnerID != nil {
			db = db.Where("owner_id = ?", *f.OwnerID)
		}
		return db
	}
}

// List returns the matching rows in no particular order.
func (s *ListingService) List(ctx context.Context, filter dto.ListingFilter) ([]models.Listing, error) {
	listings := make([]models.Listing, 0)
	if err := s.db.WithContext(ctx).Scopes(FilterListings(filter)).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

func (s *ListingService) Get(ctx context.Context, id int64) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return &listing, nil
}

func (s *ListingService) Create(ctx context.Context, req dto.CreateListingRequest, ownerID string) (*models.Listing, error) {
	listing := req.ToListing(ownerID)
	if err := s.db.WithContext(ctx).Create(&listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return &listing, nil
}

// Update writes only the fields present in req and returns the stored row.
func (s *ListingService) Update(ctx context.Context, id int64, req dto.UpdateListingRequest) (*models.Listing, error) {
	changes := req.Changes()
	if len(changes) == 0 {
		return s.Get(ctx, id)
	}

	result := s.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrListingNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the row. Deleting a missing row is not an error.
func (s *ListingService) Delete(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&models.Listing{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}
