package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/photo-manager/config"
	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/utils"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService JWT Token 服务
type JWTService struct {
	secret           []byte
	expiresIn        time.Duration
	refreshExpiresIn time.Duration
}

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg *config.Config) *JWTService {
	return &JWTService{
		secret:           []byte(cfg.JWTSecret),
		expiresIn:        cfg.JWTExpiresIn,
		refreshExpiresIn: cfg.JWTRefreshExpiresIn,
	}
}

// GenerateTokens 生成访问令牌和刷新令牌
func (s *JWTService) GenerateTokens(user *models.User) (*TokenPair, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("JWT secret is not initialized")
	}

	accessTokenExpiry := time.Now().Add(s.expiresIn)
	accessClaims := jwt.MapClaims{
		"username": user.Username,
		"user_id":  user.UserID,
		"role":     string(user.UserType),
		"type":     "access",
		"exp":      accessTokenExpiry.Unix(),
		"iat":      time.Now().Unix(),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.RandomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshTokenExpiry := time.Now().Add(s.refreshExpiresIn)

	return &TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessTokenExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshTokenExpiry,
	}, nil
}

// ParseToken 解析并验证 JWT 令牌
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("JWT secret is not initialized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserIDFromClaims 从令牌声明中取用户 ID
func UserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("token missing user_id claim")
	}
	return id, nil
}
