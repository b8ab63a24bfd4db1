package auth

import (
	"fmt"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
)

// Factory 按提供方构造认证服务
type Factory struct {
	users    UserStore
	auditLog *audit.Log

	local *LocalService
}

// NewFactory 创建认证服务工厂
func NewFactory(users UserStore, auditLog *audit.Log) *Factory {
	return &Factory{
		users:    users,
		auditLog: auditLog,
		local:    NewLocalService(users, auditLog),
	}
}

// Local 返回本地认证服务，注册只经由本地提供方
func (f *Factory) Local() *LocalService {
	return f.local
}

// ForProvider 返回指定提供方的认证服务
func (f *Factory) ForProvider(provider models.AuthProvider) (Service, error) {
	switch provider {
	case models.AuthProviderLocal:
		return f.local, nil
	case models.AuthProviderGoogle, models.AuthProviderGithub:
		return NewFederatedService(provider, f.users, f.auditLog), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}
