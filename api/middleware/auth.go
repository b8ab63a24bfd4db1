package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/anoixa/photo-manager/api/common"
	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserKey     = "current_user"
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// UserLoader 按 ID 加载用户，未找到返回 (nil, nil)
type UserLoader interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// JWTAuth 校验 Bearer 令牌并把完整用户对象放入请求上下文
func JWTAuth(jwtService *auth.JWTService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondError(c, http.StatusUnauthorized, "No Authorization request header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.RespondError(c, http.StatusUnauthorized, "Authorization field format error")
			c.Abort()
			return
		}

		claims, err := jwtService.ParseToken(parts[1])
		if err != nil {
			common.RespondError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		userID, err := auth.UserIDFromClaims(claims)
		if err != nil {
			common.RespondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			common.RespondError(c, http.StatusInternalServerError, "failed to load user")
			c.Abort()
			return
		}
		if user == nil {
			common.RespondError(c, http.StatusUnauthorized, "account no longer exists")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.UserID)
		c.Set(ContextUsernameKey, user.Username)
		c.Next()
	}
}

// RequireAdmin 仅放行管理员，必须在 JWTAuth 之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdministrator() {
			common.RespondError(c, http.StatusForbidden, "administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 从请求上下文取当前用户，未认证时为 nil
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
