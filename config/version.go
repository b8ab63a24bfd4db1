package config

// 构建信息，通过 -ldflags 注入
var (
	Version    = "dev"
	CommitHash = "n/a"
)
