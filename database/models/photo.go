package models

import (
	"time"
)

// Photo 图片模型
// PhotoID、AuthorID、AuthorName、UploadDateTime、FileSize、StoragePath
// 创建后不可变；Description 和 Hashtags 通过管理服务更新
type Photo struct {
	PhotoID     string   `gorm:"primaryKey" json:"photo_id"`
	Filename    string   `gorm:"not null" json:"filename"`
	Description string   `json:"description"`
	Hashtags    []string `gorm:"serializer:json" json:"hashtags"`

	AuthorID   string `gorm:"index:idx_photos_author;not null" json:"author_id"`
	AuthorName string `gorm:"not null" json:"author_name"`

	UploadDateTime time.Time `json:"upload_date_time"`
	FileSize       int64     `gorm:"not null" json:"file_size"`

	// 可选元数据
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	// 存储后端分配的定位符，创建时设置一次
	StoragePath   string `gorm:"not null" json:"storage_path"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// HasHashtag 检查图片是否带有指定标签
func (p *Photo) HasHashtag(tag string) bool {
	for _, t := range p.Hashtags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone 返回深拷贝，供命令快照使用
func (p *Photo) Clone() *Photo {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Hashtags = append([]string(nil), p.Hashtags...)
	return &cp
}
