package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
)

// 账户管理错误
var (
	// ErrForbidden 非管理员尝试变更其他账户
	ErrForbidden = errors.New("operation not permitted")

	// ErrUserNotFound 目标账户不存在
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPackage 未知的订阅套餐
	ErrInvalidPackage = errors.New("invalid subscription package")
)

// UserStore 账户管理需要的用户持久化操作
type UserStore interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	UpdateSubscription(ctx context.Context, userID string, pkg models.SubscriptionPackage) error
}

// Service 账户管理服务
type Service struct {
	users    UserStore
	auditLog *audit.Log
}

// NewService 创建账户管理服务
func NewService(users UserStore, auditLog *audit.Log) *Service {
	return &Service{users: users, auditLog: auditLog}
}

// ChangeSubscription 变更账户的订阅套餐，仅管理员可操作
func (s *Service) ChangeSubscription(ctx context.Context, actor *models.User, userID string, pkg models.SubscriptionPackage) error {
	if actor == nil || !actor.IsAdministrator() {
		return ErrForbidden
	}
	if !pkg.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidPackage, pkg)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.users.UpdateSubscription(ctx, userID, pkg); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	s.auditLog.Append(actor.UserID, fmt.Sprintf("Subscription changed for %s: %s -> %s", userID, user.SubscriptionPackage, pkg))
	return nil
}

// List 列出全部账户，仅管理员可操作
func (s *Service) List(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if actor == nil || !actor.IsAdministrator() {
		return nil, ErrForbidden
	}
	return s.users.FindAll(ctx)
}
