package command

import (
	"context"
	"fmt"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/anoixa/photo-manager/internal/photos"
)

// DeleteCommand 删除图片
// 文件字节在删除时已从后端移除，无法恢复，因此撤销不受支持，
// 尝试撤销会留下审计记录并返回 ErrUndoUnsupported
type DeleteCommand struct {
	service  *photos.Service
	auditLog *audit.Log
	user     *models.User
	photoID  string

	executed bool
}

// NewDeleteCommand 创建删除命令
func NewDeleteCommand(service *photos.Service, auditLog *audit.Log, user *models.User, photoID string) *DeleteCommand {
	return &DeleteCommand{
		service:  service,
		auditLog: auditLog,
		user:     user,
		photoID:  photoID,
	}
}

// Execute 执行删除
func (c *DeleteCommand) Execute(ctx context.Context) error {
	if err := c.service.Delete(ctx, c.user, c.photoID); err != nil {
		return err
	}
	c.executed = true
	return nil
}

// Undo 删除不可撤销
func (c *DeleteCommand) Undo(ctx context.Context) error {
	if !c.executed {
		return nil
	}
	c.auditLog.Append(audit.ActorSystem, fmt.Sprintf("Undo requested for deleted photo %s: operation not reversible", c.photoID))
	return ErrUndoUnsupported
}

func (c *DeleteCommand) Describe() string {
	return fmt.Sprintf("delete %s", c.photoID)
}
