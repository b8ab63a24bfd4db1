package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Provider 存储提供者接口 - 依赖倒置的核心抽象
// 管理服务只依赖此接口，后端选择由配置决定
type Provider interface {
	// Upload 以 ownerID 为命名空间持久化字节流，返回后端分配的存储路径
	// 失败时不得留下可被 Download 观察到的部分写入，重试安全
	Upload(ctx context.Context, ownerID, filename string, file io.Reader) (string, error)

	// UploadTo 持久化字节流到调用方指定的存储路径，用于派生文件（缩略图）
	UploadTo(ctx context.Context, storagePath string, file io.Reader) error

	// Download 按存储路径取回字节流
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete 按存储路径删除字节
	// 调用方（管理服务）将删除失败视为记录后继续，不阻塞流程
	Delete(ctx context.Context, storagePath string) error

	// Exists 检查存储路径是否存在
	Exists(ctx context.Context, storagePath string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// IsValidStoragePath 校验存储路径
// 拒绝空路径、绝对路径和包含 ".." 的路径
func IsValidStoragePath(storagePath string) bool {
	if storagePath == "" {
		return false
	}
	if strings.HasPrefix(storagePath, "/") || strings.HasPrefix(storagePath, "\\") {
		return false
	}
	if filepath.IsAbs(storagePath) {
		return false
	}

	cleaned := filepath.ToSlash(filepath.Clean(storagePath))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
