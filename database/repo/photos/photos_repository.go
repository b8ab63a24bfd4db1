package photos

import (
	"context"
	"errors"

	"github.com/anoixa/photo-manager/database/models"
	"gorm.io/gorm"
)

// Repository 图片仓库
// 查询方法在记录不存在时返回 (nil, nil)，不向上层泄露 gorm 错误
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save 保存图片（存在则更新）
func (r *Repository) Save(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Save(photo).Error
}

// FindByID 通过 PhotoID 获取图片
func (r *Repository) FindByID(ctx context.Context, photoID string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).Where("photo_id = ?", photoID).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

// FindAll 获取全部图片
func (r *Repository) FindAll(ctx context.Context) ([]*models.Photo, error) {
	var result []*models.Photo
	err := r.db.WithContext(ctx).Order("upload_date_time desc").Find(&result).Error
	return result, err
}

// FindByAuthor 获取指定作者的全部图片
func (r *Repository) FindByAuthor(ctx context.Context, authorID string) ([]*models.Photo, error) {
	var result []*models.Photo
	err := r.db.WithContext(ctx).Where("author_id = ?", authorID).Find(&result).Error
	return result, err
}

// CountByAuthor 统计指定作者的图片数量
func (r *Repository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Photo{}).
		Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// Delete 删除图片记录
func (r *Repository) Delete(ctx context.Context, photoID string) error {
	return r.db.WithContext(ctx).Where("photo_id = ?", photoID).Delete(&models.Photo{}).Error
}
