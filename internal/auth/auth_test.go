package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anoixa/photo-manager/config"
	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (m *memUserStore) Save(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	return nil
}

func (m *memUserStore) FindByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID], nil
}

func (m *memUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func TestLocalService_RegisterAndAuthenticate(t *testing.T) {
	store := newMemUserStore()
	svc := NewLocalService(store, audit.NewLog())

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret123", models.PackagePro)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.UserID, "USER_"))
	assert.Equal(t, models.PackagePro, user.SubscriptionPackage)
	assert.NotEqual(t, "secret123", user.Password, "password must be stored hashed")

	authed, err := svc.Authenticate(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, authed.UserID)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalService_RegisterDuplicate(t *testing.T) {
	store := newMemUserStore()
	svc := NewLocalService(store, audit.NewLog())

	_, err := svc.Register(context.Background(), "alice", "", "secret123", models.PackageFree)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "", "other", models.PackageFree)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLocalService_InvalidPackageFallsBackToFree(t *testing.T) {
	store := newMemUserStore()
	svc := NewLocalService(store, audit.NewLog())

	user, err := svc.Register(context.Background(), "bob", "", "secret123", models.SubscriptionPackage("platinum"))
	require.NoError(t, err)
	assert.Equal(t, models.PackageFree, user.SubscriptionPackage)
}

func TestFederatedService_ProvisionsOnFirstLogin(t *testing.T) {
	store := newMemUserStore()
	svc := NewFederatedService(models.AuthProviderGoogle, store, audit.NewLog())

	user, err := svc.Authenticate(context.Background(), "alice@gmail.com", "google_token_abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.UserID, "GOOGLE_"))
	assert.Equal(t, models.AuthProviderGoogle, user.AuthProvider)

	// 第二次登录返回同一账户
	again, err := svc.Authenticate(context.Background(), "alice@gmail.com", "google_token_xyz")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, again.UserID)
}

func TestFederatedService_RejectsBadToken(t *testing.T) {
	store := newMemUserStore()
	svc := NewFederatedService(models.AuthProviderGithub, store, audit.NewLog())

	_, err := svc.Authenticate(context.Background(), "alice", "google_token_abc")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFactory_ForProvider(t *testing.T) {
	factory := NewFactory(newMemUserStore(), audit.NewLog())

	local, err := factory.ForProvider(models.AuthProviderLocal)
	require.NoError(t, err)
	assert.Equal(t, models.AuthProviderLocal, local.Provider())

	google, err := factory.ForProvider(models.AuthProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, models.AuthProviderGoogle, google.Provider())

	_, err = factory.ForProvider(models.AuthProvider("facebook"))
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(&config.Config{
		JWTSecret:           "test-secret",
		JWTExpiresIn:        time.Hour,
		JWTRefreshExpiresIn: 24 * time.Hour,
	})

	user := &models.User{UserID: "USER_1", Username: "alice", UserType: models.UserTypeRegistered}
	pair, err := svc.GenerateTokens(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.AccessTokenExpiry.After(time.Now()))

	claims, err := svc.ParseToken(pair.AccessToken)
	require.NoError(t, err)

	userID, err := UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "USER_1", userID)
	assert.Equal(t, "alice", claims["username"])
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecret: "test-secret", JWTExpiresIn: time.Hour})
	other := NewJWTService(&config.Config{JWTSecret: "other-secret", JWTExpiresIn: time.Hour})

	pair, err := svc.GenerateTokens(&models.User{UserID: "USER_1", Username: "alice"})
	require.NoError(t, err)

	_, err = other.ParseToken(pair.AccessToken)
	assert.Error(t, err)
}
