package mocks

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type ListingStoreMock struct {
	mock.Mock
}

func (m *ListingStoreMock) List(ctx context.Context, filter dto.ListingFilter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListingStoreMock) Get(ctx context.Context, id int64) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListingStoreMock) Create(ctx context.Context, req dto.CreateListingRequest, ownerID string) (*models.Listing, error) {
	args := m.Called(ctx, req, ownerID)
	if v := args.Get(0); v != nil {
		return v.(*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListingStoreMock) Update(ctx context.Context, id int64, req dto.UpdateListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListingStoreMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
