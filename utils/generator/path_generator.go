package generator

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoixa/photo-manager/utils"
)

// PathGenerator 分层存储路径生成器
// 路径按所有者命名空间和上传日期分层: <ownerID>/2026/03/15/a1b2c3d4e5f6.jpg
type PathGenerator struct{}

// NewPathGenerator 创建路径生成器
func NewPathGenerator() *PathGenerator {
	return &PathGenerator{}
}

// GenerateStoragePath 为上传文件生成存储路径
// 文件名只保留扩展名，主体替换为随机标识，避免路径注入和重名覆盖
func (pg *PathGenerator) GenerateStoragePath(ownerID, filename string, uploadTime time.Time) (string, error) {
	id, err := utils.RandomHex(6)
	if err != nil {
		return "", fmt.Errorf("failed to generate storage identifier: %w", err)
	}

	datePath := uploadTime.Format("2006/01/02")
	ext := sanitizeExt(filepath.Ext(filename))

	return fmt.Sprintf("%s/%s/%s%s", sanitizeOwner(ownerID), datePath, id, ext), nil
}

// GenerateThumbnailPath 为缩略图生成存储路径
// 与原图同命名空间，thumbnails 子目录，携带宽度后缀
func (pg *PathGenerator) GenerateThumbnailPath(originalStoragePath string, width int) string {
	dir, base := filepath.Split(originalStoragePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	return filepath.ToSlash(filepath.Join(dir, "thumbnails", fmt.Sprintf("%s_%d%s", stem, width, ext)))
}

// sanitizeExt 过滤扩展名中的路径字符
func sanitizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" || strings.ContainsAny(ext, "/\\") || strings.Contains(ext, "..") {
		return ""
	}
	return ext
}

// sanitizeOwner 过滤所有者命名空间中的路径分隔符
func sanitizeOwner(ownerID string) string {
	ownerID = strings.ReplaceAll(ownerID, "/", "_")
	ownerID = strings.ReplaceAll(ownerID, "\\", "_")
	ownerID = strings.ReplaceAll(ownerID, "..", "_")
	if ownerID == "" {
		return "anonymous"
	}
	return ownerID
}
