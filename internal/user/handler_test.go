package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"tradeforce/internal/auth"
	"tradeforce/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockUserService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func (m *MockUserService) List(ctx context.Context, caller auth.Caller, limit, offset int) ([]User, int, error) {
	args := m.Called(ctx, caller, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]User), args.Int(1), args.Error(2)
}

func (m *MockUserService) SetActive(ctx context.Context, caller auth.Caller, userID int, active bool) (*User, error) {
	args := m.Called(ctx, caller, userID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserService) SetRole(ctx context.Context, caller auth.Caller, userID int, role string) (*User, error) {
	args := m.Called(ctx, caller, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func newUserRouter(svc Service, userID int, role string) *gin.Engine {
	router := gin.New()
	h := NewHandler(svc)

	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	router.POST("/auth/refresh", h.RefreshToken)

	authed := router.Group("/", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
	})
	authed.GET("/me", h.GetMe)
	authed.GET("/admin/users", h.ListUsers)
	authed.POST("/admin/users/:id/active", h.SetActive)
	authed.POST("/admin/users/:id/role", h.SetRole)

	return router
}

func TestRegisterHandler(t *testing.T) {
	t.Run("Successful registration", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Register", mock.Anything, mock.Anything).
			Return(&User{ID: 1, Email: "new@example.com"}, "access", "refresh", nil)

		router := newUserRouter(svc, 0, "")

		payload := bytes.NewBufferString(`{"email":"new@example.com","password":"password123"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/register", payload)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var body LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "access", body.AccessToken)
		assert.Equal(t, "new@example.com", body.User.Email)
	})

	t.Run("Duplicate email returns 409", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, "", "", ErrEmailExists)

		router := newUserRouter(svc, 0, "")

		payload := bytes.NewBufferString(`{"email":"taken@example.com","password":"password123"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/register", payload)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Short password fails binding", func(t *testing.T) {
		svc := new(MockUserService)
		router := newUserRouter(svc, 0, "")

		payload := bytes.NewBufferString(`{"email":"new@example.com","password":"short"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/register", payload)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Register")
	})
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"Deactivated account", ErrAccountDisabled, http.StatusForbidden},
		{"Bad credentials", ErrInvalidCredentials, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			svc.On("Login", mock.Anything, mock.Anything).Return(nil, "", "", tt.serviceErr)

			router := newUserRouter(svc, 0, "")

			payload := bytes.NewBufferString(`{"email":"u@example.com","password":"password123"}`)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/auth/login", payload)
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetMeHandler(t *testing.T) {
	svc := new(MockUserService)
	svc.On("GetByID", mock.Anything, 7).Return(&User{ID: 7, Email: "me@example.com"}, nil)

	router := newUserRouter(svc, 7, "user")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "me@example.com", body.Email)
}

func TestSetActiveHandler(t *testing.T) {
	t.Run("Deactivate account", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("SetActive", mock.Anything, auth.Caller{ID: 1, Role: "admin"}, 3, false).
			Return(&User{ID: 3, IsActive: false}, nil)

		router := newUserRouter(svc, 1, "admin")

		payload := bytes.NewBufferString(`{"active":false}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/admin/users/3/active", payload)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Missing flag rejected", func(t *testing.T) {
		svc := new(MockUserService)
		router := newUserRouter(svc, 1, "admin")

		payload := bytes.NewBufferString(`{}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/admin/users/3/active", payload)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SetActive")
	})
}

func TestSetRoleHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"Not admin", auth.ErrAdminRequired, http.StatusForbidden},
		{"Bad role", ErrUnknownRole, http.StatusBadRequest},
		{"Missing user", ErrUserNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			svc.On("SetRole", mock.Anything, mock.Anything, 3, "admin").Return(nil, tt.serviceErr)

			router := newUserRouter(svc, 1, "admin")

			payload := bytes.NewBufferString(`{"role":"admin"}`)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/admin/users/3/role", payload)
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
