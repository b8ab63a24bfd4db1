package command

import (
	"context"
	"fmt"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/photos"
)

// UpdateCommand 更新图片元数据，撤销时恢复执行前的快照
type UpdateCommand struct {
	service     *photos.Service
	user        *models.User
	photoID     string
	description string
	hashtags    []string

	before *models.Photo
}

// NewUpdateCommand 创建更新命令
func NewUpdateCommand(service *photos.Service, user *models.User, photoID, description string, hashtags []string) *UpdateCommand {
	return &UpdateCommand{
		service:     service,
		user:        user,
		photoID:     photoID,
		description: description,
		hashtags:    hashtags,
	}
}

// Execute 执行更新，快照由更新路径在图片锁内捕获
// 权限检查失败时不保留快照，撤销将是无操作
func (c *UpdateCommand) Execute(ctx context.Context) error {
	before, err := c.service.Update(ctx, c.user, c.photoID, c.description, c.hashtags)
	if err != nil {
		return err
	}
	c.before = before
	return nil
}

// Undo 将描述和标签恢复为执行前的值
// 恢复经由同一更新路径，权限检查同样生效
func (c *UpdateCommand) Undo(ctx context.Context) error {
	if c.before == nil {
		return nil
	}
	if _, err := c.service.Update(ctx, c.user, c.photoID, c.before.Description, c.before.Hashtags); err != nil {
		return fmt.Errorf("failed to undo update: %w", err)
	}
	c.before = nil
	return nil
}

func (c *UpdateCommand) Describe() string {
	return fmt.Sprintf("update %s", c.photoID)
}
