package search

import (
	"strings"
	"time"

	"github.com/anoixa/photo-manager/database/models"
)

// Criteria 检索条件，所有字段均可独立缺省
// 缺省字段不构成约束；指定字段必须全部满足
type Criteria struct {
	// Hashtags 任一标签命中即满足（match-ANY）
	Hashtags []string

	// 文件大小包含边界，单位字节
	MinSize *int64
	MaxSize *int64

	// 上传时间包含边界
	StartDate *time.Time
	EndDate   *time.Time

	// Author 对 AuthorName 做大小写不敏感的精确匹配
	Author string
}

// IsEmpty 检查是否未指定任何条件
func (c Criteria) IsEmpty() bool {
	return len(c.Hashtags) == 0 &&
		c.MinSize == nil && c.MaxSize == nil &&
		c.StartDate == nil && c.EndDate == nil &&
		c.Author == ""
}

// Matches 纯谓词，无状态，可并发调用
func (c Criteria) Matches(photo *models.Photo) bool {
	if photo == nil {
		return false
	}

	if len(c.Hashtags) > 0 {
		hasTag := false
		for _, tag := range c.Hashtags {
			if photo.HasHashtag(tag) {
				hasTag = true
				break
			}
		}
		if !hasTag {
			return false
		}
	}

	if c.MinSize != nil && photo.FileSize < *c.MinSize {
		return false
	}
	if c.MaxSize != nil && photo.FileSize > *c.MaxSize {
		return false
	}

	if c.StartDate != nil && photo.UploadDateTime.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && photo.UploadDateTime.After(*c.EndDate) {
		return false
	}

	if c.Author != "" && !strings.EqualFold(photo.AuthorName, c.Author) {
		return false
	}

	return true
}

// Filter 返回满足条件的图片子集，保持输入顺序
func Filter(photos []*models.Photo, c Criteria) []*models.Photo {
	result := make([]*models.Photo, 0, len(photos))
	for _, photo := range photos {
		if c.Matches(photo) {
			result = append(result, photo)
		}
	}
	return result
}
