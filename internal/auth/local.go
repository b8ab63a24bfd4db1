package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/anoixa/photo-manager/utils/crypto"
	"github.com/google/uuid"
)

// LocalService 本地用户名密码认证
type LocalService struct {
	users    UserStore
	auditLog *audit.Log
}

// NewLocalService 创建本地认证服务
func NewLocalService(users UserStore, auditLog *audit.Log) *LocalService {
	return &LocalService{users: users, auditLog: auditLog}
}

func (s *LocalService) Provider() models.AuthProvider {
	return models.AuthProviderLocal
}

// Authenticate 校验用户名和密码
// 用户不存在和密码错误返回同一个错误，不泄露账户是否存在
func (s *LocalService) Authenticate(ctx context.Context, credential, secret string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.AuthProvider != models.AuthProviderLocal {
		return nil, ErrInvalidCredentials
	}

	match, err := crypto.ComparePasswordAndHash(secret, user.Password)
	if err != nil || !match {
		s.auditLog.Append(audit.ActorSystem, fmt.Sprintf("Authentication failed for %s", credential))
		return nil, ErrInvalidCredentials
	}

	s.auditLog.Append(audit.ActorSystem, fmt.Sprintf("User authenticated: %s", user.UserID))
	return user, nil
}

// Register 注册本地新用户
func (s *LocalService) Register(ctx context.Context, username, email, password string, pkg models.SubscriptionPackage) (*models.User, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if !pkg.Valid() {
		pkg = models.PackageFree
	}

	hash, err := crypto.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UserID:              "USER_" + uuid.NewString(),
		Username:            username,
		Email:               email,
		Password:            hash,
		UserType:            models.UserTypeRegistered,
		SubscriptionPackage: pkg,
		RegistrationDate:    time.Now(),
		AuthProvider:        models.AuthProviderLocal,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.auditLog.Append(audit.ActorSystem, fmt.Sprintf("User registered: %s", user.UserID))
	return user, nil
}
