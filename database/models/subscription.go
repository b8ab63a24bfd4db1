package models

// Unlimited 配额哨兵值，表示不设上限
// 所有配额比较必须先判断哨兵值，再做数值比较
const Unlimited = -1

// SubscriptionPackage 订阅套餐
type SubscriptionPackage string

const (
	PackageFree SubscriptionPackage = "free"
	PackagePro  SubscriptionPackage = "pro"
	PackageGold SubscriptionPackage = "gold"
)

// PackageLimits 套餐配额
type PackageLimits struct {
	MaxUploadSize    int64 // 单次上传大小上限（字节）
	DailyUploadLimit int   // 每日上传次数上限（核心策略不使用，仅保留数据）
	MaxTotalPhotos   int   // 图片总数上限
}

// packageTable 固定套餐表
var packageTable = map[SubscriptionPackage]PackageLimits{
	PackageFree: {MaxUploadSize: 5 << 20, DailyUploadLimit: 10, MaxTotalPhotos: 50},
	PackagePro:  {MaxUploadSize: 20 << 20, DailyUploadLimit: 50, MaxTotalPhotos: 500},
	PackageGold: {MaxUploadSize: 100 << 20, DailyUploadLimit: Unlimited, MaxTotalPhotos: Unlimited},
}

// Valid 检查套餐名是否有效
func (p SubscriptionPackage) Valid() bool {
	_, ok := packageTable[p]
	return ok
}

// Limits 返回套餐配额，未知套餐按 Free 处理
func (p SubscriptionPackage) Limits() PackageLimits {
	if limits, ok := packageTable[p]; ok {
		return limits
	}
	return packageTable[PackageFree]
}

// AllowsUploadSize 检查单次上传大小是否在配额内
func (l PackageLimits) AllowsUploadSize(size int64) bool {
	if l.MaxUploadSize == Unlimited {
		return true
	}
	return size <= l.MaxUploadSize
}

// AllowsPhotoCount 检查再上传一张是否超出总数配额
// current 为用户当前已有的图片数量
func (l PackageLimits) AllowsPhotoCount(current int64) bool {
	if l.MaxTotalPhotos == Unlimited {
		return true
	}
	return current < int64(l.MaxTotalPhotos)
}
