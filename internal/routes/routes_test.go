package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/mocks"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/registry"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app      *fiber.App
	sessions *services.SessionService
}

func newTestServer(t *testing.T) *testServer {
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		SessionCookie:      "session",
		SessionTTL:         time.Hour,
		RateLimitPerMinute: 1000,
	}
	users := new(mocks.UserStoreMock)
	users.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	reg := registry.New()
	sessions := services.NewSessionService(cfg.JWTSecret, cfg.SessionTTL)
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	Setup(app, cfg, reg, users,
		handlers.NewListingHandler(mocks.NewMemoryListingStore(), reg),
		handlers.NewAuthHandler(users, sessions, cfg),
		handlers.NewHealthHandler(func() error { return nil }, nil),
	)
	return &testServer{app: app, sessions: sessions}
}

func (s *testServer) token(t *testing.T, sub string) string {
	token, err := s.sessions.Issue(&models.User{ID: sub})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestCozyStudioScenario(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.token(t, "owner-1")
	intruder := srv.token(t, "intruder")

	input := map[string]interface{}{
		"title": "Cozy Studio", "description": "Sunny room near the metro", "location": "Downtown",
		"price": 8000, "propertyType": "1 Bed", "tenantPreference": "Working",
		"imageUrls": []string{"https://img.example/1.jpg"}, "contactPhone": "555-0100",
	}
	status, raw := srv.do(t, http.MethodPost, "/api/listings", owner, input)
	require.Equal(t, http.StatusCreated, status)
	var created models.Listing
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "owner-1", created.OwnerID)
	assert.False(t, created.CreatedAt.IsZero())

	path := registry.BuildURL("/api/listings/:id", map[string]string{"id": "1"})

	status, raw = srv.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, status)
	var fetched models.Listing
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, created, fetched)

	// price-only update
	status, raw = srv.do(t, http.MethodPut, path, owner, map[string]interface{}{"price": 9000})
	require.Equal(t, http.StatusOK, status)
	var updated models.Listing
	require.NoError(t, json.Unmarshal(raw, &updated))
	expected := created
	expected.Price = 9000
	assert.Equal(t, expected, updated)

	// filters
	status, raw = srv.do(t, http.MethodGet, "/api/listings?minPrice=5000&maxPrice=10000", "", nil)
	require.Equal(t, http.StatusOK, status)
	var inRange []models.Listing
	require.NoError(t, json.Unmarshal(raw, &inRange))
	assert.Len(t, inRange, 1)

	status, raw = srv.do(t, http.MethodGet, "/api/listings?propertyType=2%20BHK", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	// owner dashboard
	status, raw = srv.do(t, http.MethodGet, "/api/owner/listings", intruder, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	// non-owner cannot touch it
	status, _ = srv.do(t, http.MethodPut, path, intruder, map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = srv.do(t, http.MethodDelete, path, intruder, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, raw = srv.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, 9000, fetched.Price)

	// delete, then gone
	status, _ = srv.do(t, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = srv.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = srv.do(t, http.MethodDelete, path, owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSetup_HealthIsPublicAndOwnerListingsProtected(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, http.MethodGet, "/api/owner/listings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw := srv.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"cache":"disabled"`)
}
