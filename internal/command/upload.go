package command

import (
	"context"
	"fmt"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/photos"
	"github.com/anoixa/photo-manager/internal/processing"
)

// UploadCommand 上传图片，撤销时删除已创建的图片
type UploadCommand struct {
	service     *photos.Service
	user        *models.User
	file        photos.FileUpload
	description string
	hashtags    []string
	pipeline    *processing.Pipeline

	created *models.Photo
}

// NewUploadCommand 创建上传命令
func NewUploadCommand(service *photos.Service, user *models.User, file photos.FileUpload, description string, hashtags []string, pipeline *processing.Pipeline) *UploadCommand {
	return &UploadCommand{
		service:     service,
		user:        user,
		file:        file,
		description: description,
		hashtags:    hashtags,
		pipeline:    pipeline,
	}
}

// Execute 执行上传并记录创建的图片
func (c *UploadCommand) Execute(ctx context.Context) error {
	photo, err := c.service.Upload(ctx, c.user, c.file, c.description, c.hashtags, c.pipeline)
	if err != nil {
		return err
	}
	c.created = photo
	return nil
}

// Undo 删除上传创建的图片；上传未成功时无事可做
func (c *UploadCommand) Undo(ctx context.Context) error {
	if c.created == nil {
		return nil
	}
	if err := c.service.Delete(ctx, c.user, c.created.PhotoID); err != nil {
		return fmt.Errorf("failed to undo upload: %w", err)
	}
	c.created = nil
	return nil
}

// Result 返回执行成功后创建的图片
func (c *UploadCommand) Result() *models.Photo {
	return c.created
}

func (c *UploadCommand) Describe() string {
	return fmt.Sprintf("upload %s", c.file.Filename)
}
