package cache

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *RistrettoProvider {
	t.Helper()
	provider, err := NewRistrettoProvider(RistrettoConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

// TestRistretto_SetGet 测试基本读写
func TestRistretto_SetGet(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	}

	require.NoError(t, provider.Set(ctx, "k1", payload{Name: "cat.jpg", Size: 1024}, time.Minute))

	var got payload
	require.NoError(t, provider.Get(ctx, "k1", &got))
	assert.Equal(t, "cat.jpg", got.Name)
	assert.EqualValues(t, 1024, got.Size)
}

// TestRistretto_Miss 未命中返回 ErrCacheMiss
func TestRistretto_Miss(t *testing.T) {
	provider := newTestProvider(t)

	var dest string
	err := provider.Get(context.Background(), "missing", &dest)
	assert.True(t, IsCacheMiss(err))
}

// TestRistretto_DeleteAndExists 删除后不再存在
func TestRistretto_DeleteAndExists(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, "k1", "v1", time.Minute))
	exists, err := provider.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, provider.Delete(ctx, "k1"))
	exists, err = provider.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestKeyBuilder 测试键构建
func TestKeyBuilder(t *testing.T) {
	kb := NewKeyBuilder("photo_meta")
	assert.Equal(t, "photo_meta", kb.Build())
	assert.Equal(t, "photo_meta:a:b", kb.Build("a", "b"))
	assert.Equal(t, "photo_meta:PHOTO_1", kb.BuildID("PHOTO_1"))
}

// TestPhotoMetaCache 测试图片元数据缓存辅助层
func TestPhotoMetaCache(t *testing.T) {
	provider := newTestProvider(t)
	helper := NewPhotoMetaCache(provider, time.Minute)
	ctx := context.Background()

	_, ok := helper.GetPhoto(ctx, "PHOTO_1")
	assert.False(t, ok)

	photo := &models.Photo{PhotoID: "PHOTO_1", Filename: "cat.jpg", AuthorID: "USER_1"}
	helper.SetPhoto(ctx, photo)

	got, ok := helper.GetPhoto(ctx, "PHOTO_1")
	require.True(t, ok)
	assert.Equal(t, "cat.jpg", got.Filename)

	helper.Invalidate(ctx, "PHOTO_1")
	_, ok = helper.GetPhoto(ctx, "PHOTO_1")
	assert.False(t, ok)
}

// TestPhotoMetaCache_NilProvider nil 提供者时所有操作为无操作
func TestPhotoMetaCache_NilProvider(t *testing.T) {
	helper := NewPhotoMetaCache(nil, time.Minute)
	ctx := context.Background()

	helper.SetPhoto(ctx, &models.Photo{PhotoID: "PHOTO_1"})
	_, ok := helper.GetPhoto(ctx, "PHOTO_1")
	assert.False(t, ok)
	helper.Invalidate(ctx, "PHOTO_1")
}
