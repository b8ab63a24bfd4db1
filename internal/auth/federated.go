package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/anoixa/photo-manager/utils"
)

// FederatedService 第三方身份提供方认证（Google、Github）
// 不持有真实 OAuth 客户端，令牌校验只做格式检查；
// 首次登录时自动创建带提供方前缀 ID 的本地账户
type FederatedService struct {
	provider models.AuthProvider
	users    UserStore
	auditLog *audit.Log
}

// NewFederatedService 创建联合认证服务
func NewFederatedService(provider models.AuthProvider, users UserStore, auditLog *audit.Log) *FederatedService {
	return &FederatedService{provider: provider, users: users, auditLog: auditLog}
}

func (s *FederatedService) Provider() models.AuthProvider {
	return s.provider
}

// Authenticate 校验提供方令牌并返回（必要时先创建）对应账户
func (s *FederatedService) Authenticate(ctx context.Context, credential, secret string) (*models.User, error) {
	if credential == "" || !s.tokenValid(secret) {
		s.auditLog.Append(audit.ActorSystem, fmt.Sprintf("Authentication failed for %s via %s", credential, s.provider))
		return nil, ErrInvalidCredentials
	}

	username := fmt.Sprintf("%s:%s", s.provider, credential)
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user, err = s.provision(ctx, username, credential)
		if err != nil {
			return nil, err
		}
	}

	s.auditLog.Append(audit.ActorSystem, fmt.Sprintf("User authenticated: %s via %s", user.UserID, s.provider))
	return user, nil
}

// tokenValid 模拟提供方令牌校验
func (s *FederatedService) tokenValid(token string) bool {
	return strings.HasPrefix(token, string(s.provider)+"_token_")
}

// provision 首次登录时创建账户
func (s *FederatedService) provision(ctx context.Context, username, email string) (*models.User, error) {
	suffix, err := utils.RandomHex(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	user := &models.User{
		UserID:              strings.ToUpper(string(s.provider)) + "_" + suffix,
		Username:            username,
		Email:               email,
		UserType:            models.UserTypeRegistered,
		SubscriptionPackage: models.PackageFree,
		RegistrationDate:    time.Now(),
		AuthProvider:        s.provider,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.auditLog.Append(audit.ActorSystem, fmt.Sprintf("User provisioned: %s via %s", user.UserID, s.provider))
	return user, nil
}
