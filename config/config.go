package config

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 存储配置
	// StorageType 选择默认存储后端: local / minio / webdav
	StorageType string `mapstructure:"storage_type"`

	StorageLocalPath string `mapstructure:"storage_local_path"`

	StorageMinioEndpoint        string `mapstructure:"storage_minio_endpoint"`
	StorageMinioAccessKeyID     string `mapstructure:"storage_minio_access_key_id"`
	StorageMinioSecretAccessKey string `mapstructure:"storage_minio_secret_access_key"`
	StorageMinioBucket          string `mapstructure:"storage_minio_bucket"`
	StorageMinioUseSSL          bool   `mapstructure:"storage_minio_use_ssl"`

	StorageWebdavURL      string `mapstructure:"storage_webdav_url"`
	StorageWebdavUsername string `mapstructure:"storage_webdav_username"`
	StorageWebdavPassword string `mapstructure:"storage_webdav_password"`
	StorageWebdavRootPath string `mapstructure:"storage_webdav_root_path"`

	// 缓存配置
	CacheType          string `mapstructure:"cache_type"`
	CacheRedisAddr     string `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string `mapstructure:"cache_redis_password"`
	CacheRedisDB       int    `mapstructure:"cache_redis_db"`
	CachePhotoTTL      int    `mapstructure:"cache_photo_ttl"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitAuthRPS    float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst  int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`

	// JWT 配置
	JWTSecret           string        `mapstructure:"jwt_secret"`
	JWTExpiresIn        time.Duration `mapstructure:"jwt_expires_in"`
	JWTRefreshExpiresIn time.Duration `mapstructure:"jwt_refresh_expires_in"`

	// 上传配置（服务端请求体上限，与订阅套餐配额无关）
	UploadMaxSizeMB int `mapstructure:"upload_max_size_mb"`

	// 缩略图配置
	ThumbnailEnable bool `mapstructure:"thumbnail_enable"`
	ThumbnailWidth  int  `mapstructure:"thumbnail_width"`

	// Worker 配置
	WorkerCount     int `mapstructure:"worker_count"`
	WorkerQueueSize int `mapstructure:"worker_queue_size"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	configPath := viper.GetString("config_file_path")
	if configPath == "" {
		configPath = ".env"
	}
	viper.SetConfigFile(configPath)
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Info: config file %s not found, using defaults and environment variables\n", configPath)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", configPath)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}

	// WorkerCount: -1 = 使用 CPU 线程数, 0 = 使用默认值 (max(2, CPU核心数)), >0 = 使用指定值
	switch {
	case globalConfig.WorkerCount < 0:
		globalConfig.WorkerCount = runtime.GOMAXPROCS(0)
	case globalConfig.WorkerCount == 0:
		globalConfig.WorkerCount = getCpus()
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "30s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_file_path", "./data/photo-manager.db")
	viper.SetDefault("db_max_open_conns", 25)
	viper.SetDefault("db_max_idle_conns", 5)
	viper.SetDefault("db_conn_max_lifetime", 300)

	// 存储配置默认值
	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/photos")
	viper.SetDefault("storage_minio_use_ssl", true)

	// 缓存配置默认值
	viper.SetDefault("cache_type", "ristretto")
	viper.SetDefault("cache_redis_addr", "127.0.0.1:6379")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("cache_photo_ttl", 600)

	// 限流配置默认值
	viper.SetDefault("rate_limit_api_rps", 50.0)
	viper.SetDefault("rate_limit_api_burst", 100)
	viper.SetDefault("rate_limit_auth_rps", 5.0)
	viper.SetDefault("rate_limit_auth_burst", 10)
	viper.SetDefault("rate_limit_expire_time", "10m")

	// JWT 配置默认值
	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("jwt_expires_in", "2h")
	viper.SetDefault("jwt_refresh_expires_in", "168h")

	// 上传配置默认值
	viper.SetDefault("upload_max_size_mb", 128)

	// 缩略图配置默认值
	viper.SetDefault("thumbnail_enable", true)
	viper.SetDefault("thumbnail_width", 300)

	// Worker 配置默认值
	viper.SetDefault("worker_count", 0)
	viper.SetDefault("worker_queue_size", 256)
}

// getCpus 默认 worker 数量，至少 2 个
func getCpus() int {
	n := runtime.NumCPU()
	if n < 2 {
		return 2
	}
	return n
}

// Validate 检查启动所必需的配置项
// 缺少 jwt_secret 时所有登录都会在签发令牌时失败，必须在启动前拦截
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required, set it in .env or the JWT_SECRET environment variable")
	}
	return nil
}

// Addr 返回监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// BaseURL 返回对外基础 URL
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	return fmt.Sprintf("http://%s:%d", c.ServerHost, c.ServerPort)
}
