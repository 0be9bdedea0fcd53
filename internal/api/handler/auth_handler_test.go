package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookhub/internal/api/models"
	"bookhub/internal/api/service"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	args := m.Called(ctx, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockAuthService) Authenticate(ctx context.Context, tokenString string) (*service.Identity, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Identity), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, tokenString string) error {
	args := m.Called(ctx, tokenString)
	return args.Error(0)
}

func (m *MockAuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func newAuthRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(svc, time.Hour, false, 5*time.Second)
	h.RegisterRoutes(r.Group("/api/auth"))
	return r
}

func TestRegisterEndpoint_Created(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := newAuthRouter(mockSvc)

	user := &models.User{ID: "u1", Email: "a@x.com", Role: models.RoleUser}
	mockSvc.On("Register", mock.Anything, "a@x.com", "secret1", "").Return(user, nil)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"email":"a@x.com","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "a@x.com")
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestRegisterEndpoint_MissingFields(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := newAuthRouter(mockSvc)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"email":"a@x.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := newAuthRouter(mockSvc)

	mockSvc.On("Register", mock.Anything, "a@x.com", "secret1", "user").Return(nil, service.ErrEmailInUse)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"email":"a@x.com","password":"secret1","role":"user"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint_SetsSessionCookie(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := newAuthRouter(mockSvc)

	user := &models.User{ID: "u1", Email: "a@x.com", Role: models.RoleUser}
	mockSvc.On("Login", mock.Anything, "a@x.com", "secret1").Return("signed-token", user, nil)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"email":"a@x.com","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	setCookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, setCookie, "token=signed-token")
	assert.Contains(t, setCookie, "HttpOnly")
	assert.Contains(t, setCookie, "SameSite=Lax")
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := newAuthRouter(mockSvc)

	mockSvc.On("Login", mock.Anything, "a@x.com", "wrong").Return("", nil, service.ErrInvalidCredentials)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"email":"a@x.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestMeEndpoint_AnonymousGetsNull(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := newAuthRouter(mockSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestLogoutEndpoint_ClearsCookie(t *testing.T) {
	mockSvc := new(MockAuthService)
	r := newAuthRouter(mockSvc)

	mockSvc.On("Logout", mock.Anything, "signed-token").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "signed-token"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=;")
	mockSvc.AssertExpectations(t)
}
