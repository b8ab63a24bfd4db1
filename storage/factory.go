package storage

import (
	"fmt"
	"log"

	"github.com/anoixa/photo-manager/config"
	"github.com/mitchellh/mapstructure"
)

// LocalConfig 本地存储配置
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

// Factory 存储工厂 - 负责创建和管理存储提供者
type Factory struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewProvider 根据类型和选项表创建存储提供者
// 选项表为配置层的原始键值，解码到各后端的类型化配置
func NewProvider(kind string, options map[string]interface{}) (Provider, error) {
	switch kind {
	case "local":
		var c LocalConfig
		if err := decodeOptions(options, &c); err != nil {
			return nil, err
		}
		return NewLocalStorage(c.Path)
	case "minio":
		var c MinioConfig
		if err := decodeOptions(options, &c); err != nil {
			return nil, err
		}
		return NewMinioStorage(c)
	case "webdav":
		var c WebDAVConfig
		if err := decodeOptions(options, &c); err != nil {
			return nil, err
		}
		return NewWebDAVStorage(c)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", kind)
	}
}

// decodeOptions 解码后端选项
func decodeOptions(options map[string]interface{}, out interface{}) error {
	if err := mapstructure.Decode(options, out); err != nil {
		return fmt.Errorf("failed to decode storage options: %w", err)
	}
	return nil
}

// NewFactory 创建新的存储工厂
// 初始化所有已配置的后端，默认后端由 storage_type 决定
func NewFactory(cfg *config.Config) (*Factory, error) {
	factory := &Factory{
		providers: make(map[string]Provider),
	}

	log.Println("Initializing storage providers...")

	// 初始化本地存储
	if cfg.StorageLocalPath != "" {
		provider, err := NewProvider("local", map[string]interface{}{
			"path": cfg.StorageLocalPath,
		})
		if err != nil {
			log.Printf("Failed to initialize local storage: %v", err)
		} else {
			factory.providers["local"] = provider
			log.Println("Successfully initialized 'local' storage provider")
		}
	}

	// 初始化 MinIO 存储
	if cfg.StorageMinioEndpoint != "" {
		provider, err := NewProvider("minio", map[string]interface{}{
			"endpoint":          cfg.StorageMinioEndpoint,
			"access_key_id":     cfg.StorageMinioAccessKeyID,
			"secret_access_key": cfg.StorageMinioSecretAccessKey,
			"bucket":            cfg.StorageMinioBucket,
			"use_ssl":           cfg.StorageMinioUseSSL,
		})
		if err != nil {
			log.Printf("Failed to initialize minio storage: %v", err)
		} else {
			factory.providers["minio"] = provider
			log.Println("Successfully initialized 'minio' storage provider")
		}
	}

	// 初始化 WebDAV 存储
	if cfg.StorageWebdavURL != "" {
		provider, err := NewProvider("webdav", map[string]interface{}{
			"url":       cfg.StorageWebdavURL,
			"username":  cfg.StorageWebdavUsername,
			"password":  cfg.StorageWebdavPassword,
			"root_path": cfg.StorageWebdavRootPath,
		})
		if err != nil {
			log.Printf("Failed to initialize webdav storage: %v", err)
		} else {
			factory.providers["webdav"] = provider
			log.Println("Successfully initialized 'webdav' storage provider")
		}
	}

	if len(factory.providers) == 0 {
		return nil, fmt.Errorf("no storage providers were successfully initialized")
	}

	factory.defaultProvider = cfg.StorageType
	if _, ok := factory.providers[factory.defaultProvider]; !ok {
		return nil, fmt.Errorf("default storage type '%s' is not available", factory.defaultProvider)
	}
	log.Printf("Default storage provider set to: '%s'", factory.defaultProvider)

	return factory, nil
}

// Get 获取指定名称的存储提供者
func (f *Factory) Get(name string) (Provider, error) {
	if name == "" {
		name = f.defaultProvider
	}

	provider, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("storage provider '%s' not found", name)
	}
	return provider, nil
}

// GetDefault 获取默认存储提供者
func (f *Factory) GetDefault() Provider {
	provider, _ := f.Get(f.defaultProvider)
	return provider
}

// GetDefaultName 获取默认存储提供者名称
func (f *Factory) GetDefaultName() string {
	return f.defaultProvider
}

// ListProviders 列出所有可用的存储提供者名称
func (f *Factory) ListProviders() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	return names
}
