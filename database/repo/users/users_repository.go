package users

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/anoixa/photo-manager/database/models"
	"gorm.io/gorm"
)

// DefaultAdminID 初始管理员账户 ID
const DefaultAdminID = "ADMIN_001"

// Repository 用户仓库
// 查询方法在记录不存在时返回 (nil, nil)
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save 保存用户（存在则更新）
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindByID 通过 UserID 获取用户
func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername 通过用户名获取用户
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindAll 获取全部用户
func (r *Repository) FindAll(ctx context.Context) ([]*models.User, error) {
	var result []*models.User
	err := r.db.WithContext(ctx).Order("registration_date asc").Find(&result).Error
	return result, err
}

// Delete 删除用户记录
func (r *Repository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.User{}).Error
}

// UpdateSubscription 更新用户订阅套餐
func (r *Repository) UpdateSubscription(ctx context.Context, userID string, pkg models.SubscriptionPackage) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("subscription_package", pkg).Error
}

// SeedDefaultAdmin 确保初始管理员账户存在
func (r *Repository) SeedDefaultAdmin(ctx context.Context) error {
	existing, err := r.FindByID(ctx, DefaultAdminID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	admin := &models.User{
		UserID:              DefaultAdminID,
		Username:            "admin",
		Email:               "admin@photomanager.local",
		UserType:            models.UserTypeAdministrator,
		SubscriptionPackage: models.PackageGold,
		RegistrationDate:    time.Now(),
		AuthProvider:        models.AuthProviderLocal,
	}

	if err := r.Save(ctx, admin); err != nil {
		return err
	}
	log.Printf("Seeded default administrator account '%s'", admin.Username)
	return nil
}
