package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex 生成 n 字节的随机十六进制字符串
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
