package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/photo-manager/config"
	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	users map[string]*models.User
}

func (f *fakeLoader) FindByID(ctx context.Context, userID string) (*models.User, error) {
	return f.users[userID], nil
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(&config.Config{
		JWTSecret:           "test-secret-key-at-least-32-characters",
		JWTExpiresIn:        time.Hour,
		JWTRefreshExpiresIn: 24 * time.Hour,
	})
}

func setupRouter(jwtService *auth.JWTService, loader UserLoader, adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/protected")
	group.Use(JWTAuth(jwtService, loader))
	if adminOnly {
		group.Use(RequireAdmin())
	}
	group.GET("", func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := newJWTService()
	user := &models.User{UserID: "USER_1", Username: "alice", UserType: models.UserTypeRegistered}
	loader := &fakeLoader{users: map[string]*models.User{"USER_1": user}}
	router := setupRouter(jwtService, loader, false)

	pair, err := jwtService.GenerateTokens(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "USER_1")
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := setupRouter(newJWTService(), &fakeLoader{}, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_BadScheme(t *testing.T) {
	router := setupRouter(newJWTService(), &fakeLoader{}, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "ApiKey whatever")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_DeletedAccount(t *testing.T) {
	jwtService := newJWTService()
	user := &models.User{UserID: "USER_1", Username: "alice"}
	router := setupRouter(jwtService, &fakeLoader{users: map[string]*models.User{}}, false)

	pair, err := jwtService.GenerateTokens(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	jwtService := newJWTService()
	registered := &models.User{UserID: "USER_1", Username: "alice", UserType: models.UserTypeRegistered}
	administrator := &models.User{UserID: "ADMIN_001", Username: "admin", UserType: models.UserTypeAdministrator}
	loader := &fakeLoader{users: map[string]*models.User{
		"USER_1":    registered,
		"ADMIN_001": administrator,
	}}
	router := setupRouter(jwtService, loader, true)

	for _, tc := range []struct {
		user     *models.User
		expected int
	}{
		{registered, http.StatusForbidden},
		{administrator, http.StatusOK},
	} {
		pair, err := jwtService.GenerateTokens(tc.user)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, tc.expected, w.Code, "user %s", tc.user.UserID)
	}
}

func TestIPRateLimiter_Burst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(1, 2, time.Minute)
	defer limiter.StopCleanup()

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
