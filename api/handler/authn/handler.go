package authn

import (
	"errors"
	"net/http"

	"github.com/anoixa/photo-manager/api/common"
	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/auth"
	"github.com/gin-gonic/gin"
)

// Handler 认证接口处理器
type Handler struct {
	factory    *auth.Factory
	jwtService *auth.JWTService
}

// NewHandler 创建认证处理器
func NewHandler(factory *auth.Factory, jwtService *auth.JWTService) *Handler {
	return &Handler{factory: factory, jwtService: jwtService}
}

type loginRequest struct {
	Provider   string `json:"provider"`
	Credential string `json:"credential" binding:"required"`
	Secret     string `json:"secret" binding:"required"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required,min=6"`
	Package  string `json:"package"`
}

type tokenResponse struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Login 按提供方认证并颁发令牌
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	provider := models.AuthProvider(req.Provider)
	if req.Provider == "" {
		provider = models.AuthProviderLocal
	}

	service, err := h.factory.ForProvider(provider)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := service.Authenticate(c.Request.Context(), req.Credential, req.Secret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "authentication failed")
		return
	}

	h.respondWithTokens(c, user)
}

// Register 注册本地账户并颁发令牌
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.factory.Local().Register(c.Request.Context(), req.Username, req.Email, req.Password, models.SubscriptionPackage(req.Package))
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			common.RespondError(c, http.StatusConflict, "username already taken")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "registration failed")
		return
	}

	h.respondWithTokens(c, user)
}

func (h *Handler) respondWithTokens(c *gin.Context, user *models.User) {
	pair, err := h.jwtService.GenerateTokens(user)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	common.RespondSuccess(c, tokenResponse{
		UserID:       user.UserID,
		Username:     user.Username,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessTokenExpiry.Unix(),
	})
}
