package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/services"
)

// MemoryListingStore is an in-process ListingStore with the same filter and
// not-found semantics as the GORM adapter.
type MemoryListingStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Listing
	order  []int64
}

func NewMemoryListingStore() *MemoryListingStore {
	return &MemoryListingStore{rows: make(map[int64]models.Listing)}
}

func (s *MemoryListingStore) List(_ context.Context, f dto.ListingFilter) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Listing, 0)
	for _, id := range s.order {
		l, ok := s.rows[id]
		if !ok || !matches(l, f) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func matches(l models.Listing, f dto.ListingFilter) bool {
	switch {
	case f.Location != nil && !strings.Contains(l.Location, *f.Location):
		return false
	case f.MinPrice != nil && l.Price < *f.MinPrice:
		return false
	case f.MaxPrice != nil && l.Price > *f.MaxPrice:
		return false
	case f.PropertyType != nil && l.PropertyType != *f.PropertyType:
		return false
	case f.TenantPreference != nil && l.TenantPreference != *f.TenantPreference:
		return false
	case f.OwnerID != nil && l.OwnerID != *f.OwnerID:
		return false
	}
	return true
}

func (s *MemoryListingStore) Get(_ context.Context, id int64) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.rows[id]
	if !ok {
		return nil, services.ErrListingNotFound
	}
	return &l, nil
}

func (s *MemoryListingStore) Create(_ context.Context, req dto.CreateListingRequest, ownerID string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	l := req.ToListing(ownerID)
	l.ID = s.nextID
	l.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	s.rows[l.ID] = l
	s.order = append(s.order, l.ID)
	return &l, nil
}

func (s *MemoryListingStore) Update(_ context.Context, id int64, req dto.UpdateListingRequest) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.rows[id]
	if !ok {
		return nil, services.ErrListingNotFound
	}
	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Location != nil {
		l.Location = *req.Location
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.PropertyType != nil {
		l.PropertyType = *req.PropertyType
	}
	if req.TenantPreference != nil {
		l.TenantPreference = *req.TenantPreference
	}
	if req.ImageURLs != nil {
		l.ImageURLs = append([]string{}, (*req.ImageURLs)...)
	}
	if req.ContactPhone != nil {
		l.ContactPhone = *req.ContactPhone
	}
	s.rows[id] = l
	return &l, nil
}

func (s *MemoryListingStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, id)
	return nil
}
