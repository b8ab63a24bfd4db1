package admin

import (
	"errors"
	"net/http"

	"github.com/anoixa/photo-manager/api/common"
	"github.com/anoixa/photo-manager/api/middleware"
	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/accounts"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/gin-gonic/gin"
)

// Handler 管理接口处理器
type Handler struct {
	auditLog *audit.Log
	accounts *accounts.Service
}

// NewHandler 创建管理处理器
func NewHandler(auditLog *audit.Log, accountsService *accounts.Service) *Handler {
	return &Handler{auditLog: auditLog, accounts: accountsService}
}

type auditEntry struct {
	Timestamp string `json:"timestamp"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Line      string `json:"line"`
}

func renderEntries(entries []audit.Entry) []auditEntry {
	out := make([]auditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntry{
			Timestamp: e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Actor:     e.Actor,
			Action:    e.Action,
			Line:      e.String(),
		})
	}
	return out
}

// ListAudit 返回全部审计记录
// GET /api/v1/admin/audit
func (h *Handler) ListAudit(c *gin.Context) {
	entries := h.auditLog.Entries()
	common.RespondSuccess(c, gin.H{"count": len(entries), "entries": renderEntries(entries)})
}

// AuditForActor 返回涉及指定参与者的审计记录
// GET /api/v1/admin/audit/:actor
func (h *Handler) AuditForActor(c *gin.Context) {
	entries := h.auditLog.EntriesForActor(c.Param("actor"))
	common.RespondSuccess(c, gin.H{"count": len(entries), "entries": renderEntries(entries)})
}

// ListUsers 返回全部账户
// GET /api/v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.accounts.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		common.RespondError(c, http.StatusForbidden, err.Error())
		return
	}
	common.RespondSuccess(c, gin.H{"count": len(users), "users": users})
}

type subscriptionRequest struct {
	Package string `json:"package" binding:"required"`
}

// ChangeSubscription 变更账户订阅套餐
// PATCH /api/v1/admin/users/:id/subscription
func (h *Handler) ChangeSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.accounts.ChangeSubscription(c.Request.Context(), middleware.CurrentUser(c),
		c.Param("id"), models.SubscriptionPackage(req.Package))
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrForbidden):
			common.RespondError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, accounts.ErrUserNotFound):
			common.RespondError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, accounts.ErrInvalidPackage):
			common.RespondError(c, http.StatusBadRequest, err.Error())
		default:
			common.RespondError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	common.RespondSuccessMessage(c, "subscription updated", nil)
}
