package cache

import (
	"fmt"

	"github.com/anoixa/photo-manager/config"
)

// NewProvider 按配置创建缓存提供者
// cache_type 为 "none" 时返回 nil，调用方需容忍 nil 缓存
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "", "memory", "ristretto":
		return NewRistrettoProvider(RistrettoConfig{})
	case "redis":
		provider, err := NewRedisProvider(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return provider, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.CacheType)
	}
}
