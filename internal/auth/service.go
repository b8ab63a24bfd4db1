package auth

import (
	"context"
	"errors"

	"github.com/anoixa/photo-manager/database/models"
)

// 认证相关错误
var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists 用户名已被占用
	ErrUserExists = errors.New("username already taken")

	// ErrUnknownProvider 不支持的认证提供方
	ErrUnknownProvider = errors.New("unknown authentication provider")
)

// UserStore 认证层需要的用户持久化操作
// 未找到时返回 (nil, nil)
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service 认证服务
// credential 的含义由提供方决定：本地认证是用户名，
// 联合认证是对方身份系统中的账户标识
type Service interface {
	// Authenticate 校验凭据并返回用户
	Authenticate(ctx context.Context, credential, secret string) (*models.User, error)

	// Provider 返回提供方标识
	Provider() models.AuthProvider
}
