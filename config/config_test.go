package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidate_RequiresJWTSecret 未配置 jwt_secret 时启动校验失败
func TestValidate_RequiresJWTSecret(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")

	cfg.JWTSecret = "test-secret"
	assert.NoError(t, cfg.Validate())
}

func TestAddr(t *testing.T) {
	cfg := &Config{ServerHost: "0.0.0.0", ServerPort: 8080}
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}
