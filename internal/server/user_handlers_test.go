package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserTestServer(mockRepo *MockUserRepository) *Server {
	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	s.userService = service.NewUserService(mockRepo)
	return s
}

func TestGetMyProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	s := newUserTestServer(mockRepo)

	app := fiber.New()
	app.Get("/users/me", withUser(7), s.GetMyProfile)

	mockRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Username: "writer"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "writer", user.Username)
}

func TestUpdateMyProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	s := newUserTestServer(mockRepo)

	app := fiber.New()
	app.Put("/users/me", withUser(7), s.UpdateMyProfile)

	mockRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Username: "writer"}, nil)
	mockRepo.On("GetByUsername", mock.Anything, "scribe").Return(nil, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(map[string]string{"username": "scribe", "bio": "I write things"})
	req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "scribe", user.Username)
	assert.Equal(t, "I write things", user.Bio)
}
