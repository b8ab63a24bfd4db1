package photos

import (
	"context"

	"github.com/anoixa/photo-manager/database/models"
)

// PhotoStore 图片实体存储接口
// 查询方法在记录不存在时返回 (nil, nil)
type PhotoStore interface {
	Save(ctx context.Context, photo *models.Photo) error
	FindByID(ctx context.Context, photoID string) (*models.Photo, error)
	FindAll(ctx context.Context) ([]*models.Photo, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*models.Photo, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	Delete(ctx context.Context, photoID string) error
}

// UserStore 用户实体存储接口
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
}
