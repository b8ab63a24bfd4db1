package database

import (
	"context"

	"gorm.io/gorm"
)

// Provider 实体持久层的数据库抽象
// 仓库层只持有由此接口交出的 *gorm.DB，方言选择不外泄
type Provider interface {
	// DB 返回底层 *gorm.DB 实例
	DB() *gorm.DB

	// WithContext 返回带上下文的 *gorm.DB
	WithContext(ctx context.Context) *gorm.DB

	// AutoMigrate 迁移给定实体的表结构
	AutoMigrate(entities ...interface{}) error

	// Ping 检查数据库连接
	Ping() error

	// Close 关闭数据库连接
	Close() error

	// Name 返回方言名称
	Name() string
}
