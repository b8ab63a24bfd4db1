package photos

import "errors"

// 领域错误
// 本层所有失败都是局部的，通过返回值报告，不会终止进程
var (
	// ErrQuotaExceeded 上传大小或总数超出订阅套餐限制
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrProcessingFailed 处理管线阶段失败，上传已中止且无部分状态
	ErrProcessingFailed = errors.New("image processing failed")

	// ErrStorageFailed 存储后端写入失败，上传已中止
	ErrStorageFailed = errors.New("storage operation failed")

	// ErrPhotoNotFound 目标图片不存在
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrForbidden 非所有者且非管理员尝试修改
	ErrForbidden = errors.New("operation not permitted")
)
