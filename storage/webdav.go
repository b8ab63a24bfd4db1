package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/anoixa/photo-manager/utils/generator"
	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 存储配置
type WebDAVConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	RootPath string `mapstructure:"root_path"`
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
	pathGen  *generator.PathGenerator
}

// NewWebDAVStorage 创建 WebDAV 存储提供者并验证连接
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
		pathGen:  generator.NewPathGenerator(),
	}, nil
}

// Upload 将文件写入 WebDAV，返回存储路径
// 先写临时对象再 Rename，避免部分写入可见
func (s *WebDAVStorage) Upload(ctx context.Context, ownerID, filename string, file io.Reader) (string, error) {
	storagePath, err := s.pathGen.GenerateStoragePath(ownerID, filename, time.Now())
	if err != nil {
		return "", err
	}
	if err := s.UploadTo(ctx, storagePath, file); err != nil {
		return "", err
	}
	return storagePath, nil
}

// UploadTo 将文件写入指定存储路径
func (s *WebDAVStorage) UploadTo(ctx context.Context, storagePath string, file io.Reader) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	remotePath := s.remote(storagePath)
	if err := s.client.MkdirAll(path.Dir(remotePath), 0755); err != nil {
		return fmt.Errorf("failed to create webdav directory for '%s': %w", storagePath, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read upload content for '%s': %w", storagePath, err)
	}

	tmpPath := remotePath + ".uploading"
	if err := s.client.Write(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write webdav object '%s': %w", storagePath, err)
	}
	if err := s.client.Rename(tmpPath, remotePath, true); err != nil {
		_ = s.client.Remove(tmpPath)
		return fmt.Errorf("failed to finalize webdav object '%s': %w", storagePath, err)
	}
	return nil
}

// Download 从 WebDAV 获取文件
func (s *WebDAVStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if !IsValidStoragePath(storagePath) {
		return nil, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	data, err := s.client.Read(s.remote(storagePath))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("file not found in webdav: %s", storagePath)
		}
		return nil, fmt.Errorf("failed to read webdav object '%s': %w", storagePath, err)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete 从 WebDAV 删除文件，不存在视为成功
func (s *WebDAVStorage) Delete(ctx context.Context, storagePath string) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	if err := s.client.Remove(s.remote(storagePath)); err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete webdav object '%s': %w", storagePath, err)
	}
	return nil
}

// Exists 检查对象是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, storagePath string) (bool, error) {
	if !IsValidStoragePath(storagePath) {
		return false, fmt.Errorf("invalid storage path: %s", storagePath)
	}

	_, err := s.client.Stat(s.remote(storagePath))
	if err != nil {
		if gowebdav.IsErrNotFound(err) || os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health 检查根目录可访问
func (s *WebDAVStorage) Health(ctx context.Context) error {
	root := s.rootPath
	if root == "" {
		root = "/"
	}
	_, err := s.client.ReadDir(root)
	return err
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}

// remote 拼接远端完整路径
func (s *WebDAVStorage) remote(storagePath string) string {
	return path.Join(s.rootPath, storagePath)
}
