package cache

import (
	"context"
	"time"

	"github.com/anoixa/photo-manager/database/models"
)

// PhotoMetaCache 图片元数据缓存辅助层
// 缓存失败只影响命中率，不向调用方报告
type PhotoMetaCache struct {
	provider Provider
	ttl      time.Duration
}

// NewPhotoMetaCache 创建图片元数据缓存，provider 为 nil 时所有操作为无操作
func NewPhotoMetaCache(provider Provider, ttl time.Duration) *PhotoMetaCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PhotoMetaCache{provider: provider, ttl: ttl}
}

// GetPhoto 按 ID 取缓存的图片元数据
func (c *PhotoMetaCache) GetPhoto(ctx context.Context, photoID string) (*models.Photo, bool) {
	if c.provider == nil {
		return nil, false
	}
	var photo models.Photo
	if err := c.provider.Get(ctx, PhotoMeta.BuildID(photoID), &photo); err != nil {
		return nil, false
	}
	return &photo, true
}

// SetPhoto 写入图片元数据
func (c *PhotoMetaCache) SetPhoto(ctx context.Context, photo *models.Photo) {
	if c.provider == nil || photo == nil {
		return
	}
	_ = c.provider.Set(ctx, PhotoMeta.BuildID(photo.PhotoID), photo, c.ttl)
}

// Invalidate 删除缓存的图片元数据
func (c *PhotoMetaCache) Invalidate(ctx context.Context, photoID string) {
	if c.provider == nil {
		return
	}
	_ = c.provider.Delete(ctx, PhotoMeta.BuildID(photoID))
}
