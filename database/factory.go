package database

import (
	"fmt"
	"log"

	"github.com/anoixa/photo-manager/config"
	"github.com/anoixa/photo-manager/database/models"
)

// Factory 持有已初始化的数据库提供者
type Factory struct {
	provider Provider
}

// NewFactory 初始化数据库提供者
func NewFactory(cfg *config.Config) (*Factory, error) {
	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Printf("Database provider '%s' ready", provider.Name())

	return &Factory{provider: provider}, nil
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// AutoMigrate 迁移全部实体表结构
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	if err := f.provider.AutoMigrate(
		&models.User{},
		&models.Photo{},
	); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// Ping 检查数据库连接
func (f *Factory) Ping() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Ping()
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}
