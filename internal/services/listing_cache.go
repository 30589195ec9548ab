package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// CachedListingStore reads single listings through Redis. Lists always hit
// the database.
type CachedListingStore struct {
	next  ListingStore
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedListingStore(next ListingStore, rdb *redis.Client, ttl time.Duration) *CachedListingStore {
	return &CachedListingStore{next: next, redis: rdb, ttl: ttl}
}

func listingKey(id int64) string {
	return fmt.Sprintf("listing:%d", id)
}

func (s *CachedListingStore) List(ctx context.Context, filter dto.ListingFilter) ([]models.Listing, error) {
	return s.next.List(ctx, filter)
}

func (s *CachedListingStore) Get(ctx context.Context, id int64) (*models.Listing, error) {
	key := listingKey(id)

	cached, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		var listing models.Listing
		if jerr := json.Unmarshal([]byte(cached), &listing); jerr == nil {
			return &listing, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	} else if err != redis.Nil {
		slog.Warn("listing cache read failed", "listing_id", id, "error", err)
	}

	listing, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(listing); jerr == nil {
		if serr := s.redis.Set(ctx, key, data, s.ttl).Err(); serr != nil {
			slog.Warn("listing cache write failed", "listing_id", id, "error", serr)
		}
	}
	return listing, nil
}

func (s *CachedListingStore) Create(ctx context.Context, req dto.CreateListingRequest, ownerID string) (*models.Listing, error) {
	return s.next.Create(ctx, req, ownerID)
}

func (s *CachedListingStore) Update(ctx context.Context, id int64, req dto.UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.next.Update(ctx, id, req)
	s.evict(ctx, id)
	return listing, err
}

func (s *CachedListingStore) Delete(ctx context.Context, id int64) error {
	err := s.next.Delete(ctx, id)
	s.evict(ctx, id)
	return err
}

func (s *CachedListingStore) evict(ctx context.Context, id int64) {
	if err := s.redis.Del(ctx, listingKey(id)).Err(); err != nil {
		slog.Warn("listing cache eviction failed", "listing_id", id, "error", err)
	}
}
