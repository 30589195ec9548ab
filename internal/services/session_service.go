package services

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSubject = errors.New("missing sub claim")

// SessionService signs the session tokens that JWTProtected verifies.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: ttl}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue returns an HS256 token carrying the user's identity claims.
func (s *SessionService) Issue(user *models.User) (string, error) {
	if user.ID == "" {
		return "", ErrMissingSubject
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	optional := map[string]*string{
		"email":             user.Email,
		"first_name":        user.FirstName,
		"last_name":         user.LastName,
		"profile_image_url": user.ProfileImageURL,
	}
	for k, v := range optional {
		if v != nil {
			claims[k] = *v
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// UserFromClaims maps verified claims back onto the users mirror row.
func UserFromClaims(claims jwt.MapClaims) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSubject
	}
	claim := func(key string) *string {
		if v, ok := claims[key].(string); ok && v != "" {
			return &v
		}
		return nil
	}
	return &models.User{
		ID:              sub,
		Email:           claim("email"),
		FirstName:       claim("first_name"),
		LastName:        claim("last_name"),
		ProfileImageURL: claim("profile_image_url"),
	}, nil
}
