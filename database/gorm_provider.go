package database

import (
	"context"

	"github.com/anoixa/photo-manager/config"
	"gorm.io/gorm"
)

// GormProvider 基于 GORM 的 Provider 实现，支持 sqlite 与 postgres
type GormProvider struct {
	db      *gorm.DB
	dialect string
}

// NewGormProvider 按配置建立数据库连接并返回提供者
func NewGormProvider(cfg *config.Config) (*GormProvider, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	dialect := cfg.DBType
	if dialect == "" {
		dialect = "sqlite"
	}

	return &GormProvider{db: db, dialect: dialect}, nil
}

func (p *GormProvider) DB() *gorm.DB {
	return p.db
}

func (p *GormProvider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

func (p *GormProvider) AutoMigrate(entities ...interface{}) error {
	return p.db.AutoMigrate(entities...)
}

func (p *GormProvider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (p *GormProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *GormProvider) Name() string {
	return p.dialect
}
