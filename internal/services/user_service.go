package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Upsert inserts the user or refreshes the profile columns of an existing
// row. Columns whose claim is absent keep their stored value.
func (s *UserService) Upsert(ctx context.Context, user *models.User) error {
	columns := make([]string, 0, 5)
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"email", user.Email},
		{"first_name", user.FirstName},
		{"last_name", user.LastName},
		{"profile_image_url", user.ProfileImageURL},
	} {
		if f.value != nil {
			columns = append(columns, f.name)
		}
	}
	columns = append(columns, "updated_at")

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}
