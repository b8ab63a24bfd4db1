package models

import (
	"time"
)

// UserType 用户类型
type UserType string

const (
	UserTypeAnonymous     UserType = "anonymous"
	UserTypeRegistered    UserType = "registered"
	UserTypeAdministrator UserType = "administrator"
)

// AuthProvider 认证提供者
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGithub AuthProvider = "github"
)

// User 用户模型
// UserID、RegistrationDate、AuthProvider 创建后不可变；
// SubscriptionPackage 仅允许管理员修改
type User struct {
	UserID              string              `gorm:"primaryKey" json:"user_id"`
	Username            string              `gorm:"uniqueIndex;not null" json:"username"`
	Email               string              `json:"email"`
	Password            string              `json:"-"`
	UserType            UserType            `gorm:"not null;default:registered" json:"user_type"`
	SubscriptionPackage SubscriptionPackage `gorm:"not null;default:free" json:"subscription_package"`
	RegistrationDate    time.Time           `json:"registration_date"`
	AuthProvider        AuthProvider        `gorm:"not null;default:local" json:"auth_provider"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// IsAdministrator 检查是否为管理员
func (u *User) IsAdministrator() bool {
	return u.UserType == UserTypeAdministrator
}

// Limits 返回用户当前套餐配额
func (u *User) Limits() PackageLimits {
	return u.SubscriptionPackage.Limits()
}
