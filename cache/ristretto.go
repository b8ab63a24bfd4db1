package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoProvider 进程内缓存
type RistrettoProvider struct {
	client *ristretto.Cache
}

// RistrettoConfig Ristretto 配置
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

// NewRistrettoProvider 创建进程内缓存
func NewRistrettoProvider(cfg RistrettoConfig) (*RistrettoProvider, error) {
	if cfg.NumCounters == 0 {
		cfg.NumCounters = 1000000
	}
	if cfg.MaxCost == 0 {
		cfg.MaxCost = 256 << 20
	}
	if cfg.BufferItems == 0 {
		cfg.BufferItems = 64
	}

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoProvider{client: client}, nil
}

// Set 设置缓存项，值以 JSON 字节存储
func (r *RistrettoProvider) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if r.client.SetWithTTL(key, data, int64(len(data)), expiration) {
		// 等待值被实际写入，保证随后的 Get 可见
		r.client.Wait()
	}
	return nil
}

// Get 获取缓存项
func (r *RistrettoProvider) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := r.client.Get(key)
	if !found {
		return ErrCacheMiss
	}

	data, ok := value.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrCacheMiss
	}
	return nil
}

// Delete 删除缓存项
func (r *RistrettoProvider) Delete(ctx context.Context, key string) error {
	r.client.Del(key)
	return nil
}

// Exists 检查缓存项是否存在
func (r *RistrettoProvider) Exists(ctx context.Context, key string) (bool, error) {
	_, found := r.client.Get(key)
	return found, nil
}

// Close 关闭缓存
func (r *RistrettoProvider) Close() error {
	r.client.Close()
	return nil
}

func (r *RistrettoProvider) Name() string {
	return "ristretto"
}
