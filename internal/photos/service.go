package photos

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoixa/photo-manager/database/models"
	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/anoixa/photo-manager/internal/processing"
	"github.com/anoixa/photo-manager/internal/search"
	"github.com/anoixa/photo-manager/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FileUpload 上传文件输入
// 调用方提供原始字节、文件名和大小；本层不直接读取文件系统
type FileUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

// PhotoCache 图片元数据缓存接口，可为 nil
type PhotoCache interface {
	GetPhoto(ctx context.Context, photoID string) (*models.Photo, bool)
	SetPhoto(ctx context.Context, photo *models.Photo)
	Invalidate(ctx context.Context, photoID string)
}

// Service 图片管理服务
// 所有实体变更和策略决策（配额、所有权）都经过此服务；
// 实体级写操作按键串行化，可被多个调用方并发使用
type Service struct {
	photoStore PhotoStore
	userStore  UserStore
	storage    storage.Provider
	auditLog   *audit.Log
	cache      PhotoCache
	locks      *keyMutex
}

// NewService 创建图片管理服务，cache 可为 nil
func NewService(photoStore PhotoStore, userStore UserStore, provider storage.Provider, auditLog *audit.Log, cache PhotoCache) *Service {
	return &Service{
		photoStore: photoStore,
		userStore:  userStore,
		storage:    provider,
		auditLog:   auditLog,
		cache:      cache,
		locks:      newKeyMutex(),
	}
}

// CanModify 所有权检查：管理员可操作任意图片，其他用户仅限本人图片
func (s *Service) CanModify(user *models.User, photo *models.Photo) bool {
	if user == nil || photo == nil {
		return false
	}
	return user.IsAdministrator() || user.UserID == photo.AuthorID
}

// Upload 上传图片
// 先做配额检查（大小、总数，顺序固定），失败只留一条审计记录，无其他副作用；
// 随后依次执行处理管线、存储写入、实体创建。管线或存储失败时中止，
// 不写实体、不追加成功审计记录。
// 配额检查与实体创建在同一用户锁内完成：同一用户在配额边界上的并发
// 上传不会同时通过总数检查。
func (s *Service) Upload(ctx context.Context, user *models.User, file FileUpload, description string, hashtags []string, pipeline *processing.Pipeline) (*models.Photo, error) {
	if user == nil {
		return nil, ErrForbidden
	}

	userKey := "user:" + user.UserID
	s.locks.Lock(userKey)
	defer s.locks.Unlock(userKey)

	limits := user.Limits()

	// 配额检查 (a)：单次上传大小
	if !limits.AllowsUploadSize(file.Size) {
		s.auditLog.Append(user.UserID, fmt.Sprintf("Upload failed: file size %d exceeds limit for package '%s'", file.Size, user.SubscriptionPackage))
		return nil, fmt.Errorf("%w: file size %d exceeds package limit", ErrQuotaExceeded, file.Size)
	}

	// 配额检查 (b)：图片总数
	count, err := s.photoStore.CountByAuthor(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count photos for user '%s': %w", user.UserID, err)
	}
	if !limits.AllowsPhotoCount(count) {
		s.auditLog.Append(user.UserID, fmt.Sprintf("Upload failed: photo count limit reached for package '%s'", user.SubscriptionPackage))
		return nil, fmt.Errorf("%w: photo count limit reached", ErrQuotaExceeded)
	}

	// 处理管线；失败时中止，无部分状态
	img := processing.Image{
		Data:   file.Data,
		Format: formatFromFilename(file.Filename),
	}
	if pipeline != nil {
		img, err = pipeline.Process(img)
		if err != nil {
			s.auditLog.Append(user.UserID, "Upload failed: "+err.Error())
			return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
		}
	}

	// 存储写入，路径由后端分配
	storagePath, err := s.storage.Upload(ctx, user.UserID, file.Filename, bytes.NewReader(img.Data))
	if err != nil {
		s.auditLog.Append(user.UserID, "Upload failed: "+err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	s.auditLog.Append(storageActor(s.storage.Name()), "Photo bytes stored at "+storagePath)

	photo := &models.Photo{
		PhotoID:        "PHOTO_" + uuid.NewString(),
		Filename:       file.Filename,
		Description:    description,
		Hashtags:       append([]string(nil), hashtags...),
		AuthorID:       user.UserID,
		AuthorName:     user.Username,
		UploadDateTime: time.Now(),
		FileSize:       file.Size,
		Format:         img.Format,
		Width:          img.Width,
		Height:         img.Height,
		StoragePath:    storagePath,
	}

	if err := s.photoStore.Save(ctx, photo); err != nil {
		// 实体写入失败时回收已存储的字节，避免孤儿文件
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			log.Printf("Failed to clean up stored bytes at '%s' after save failure: %v", storagePath, delErr)
		}
		s.auditLog.Append(user.UserID, "Upload failed: "+err.Error())
		return nil, fmt.Errorf("failed to save photo entity: %w", err)
	}

	s.auditLog.Append(user.UserID, "Photo uploaded: "+photo.Filename)
	return photo, nil
}

// BatchResult 批量上传的单文件结果
type BatchResult struct {
	Photo    *models.Photo
	Filename string
	Error    string
}

// UploadBatch 批量上传，逐文件返回结果，单个文件失败不影响其他文件
func (s *Service) UploadBatch(ctx context.Context, user *models.User, files []FileUpload, description string, hashtags []string, pipeline *processing.Pipeline) []*BatchResult {
	results := make([]*BatchResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = &BatchResult{Filename: file.Filename, Error: ctx.Err().Error()}
			default:
				photo, err := s.Upload(ctx, user, file, description, hashtags, pipeline)
				result := &BatchResult{Filename: file.Filename, Photo: photo}
				if err != nil {
					result.Error = err.Error()
				}
				results[i] = result
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Search 按条件检索图片
// 无论命中多少条（包括零条）都追加一条审计记录
func (s *Service) Search(ctx context.Context, criteria search.Criteria) ([]*models.Photo, error) {
	all, err := s.photoStore.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}

	filtered := search.Filter(all, criteria)
	s.auditLog.Append(audit.ActorSystem, "Photo search performed")
	return filtered, nil
}

// Get 获取单张图片，优先命中缓存
func (s *Service) Get(ctx context.Context, photoID string) (*models.Photo, error) {
	if s.cache != nil {
		if photo, ok := s.cache.GetPhoto(ctx, photoID); ok {
			return photo, nil
		}
	}

	photo, err := s.photoStore.FindByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load photo '%s': %w", photoID, err)
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}

	if s.cache != nil {
		s.cache.SetPhoto(ctx, photo)
	}
	return photo, nil
}

// Update 更新图片描述与标签，返回更新前的快照供撤销使用
// 快照在图片锁内捕获，与写入原子，不经过缓存
// 目标不存在返回 ErrPhotoNotFound，无权限返回 ErrForbidden
func (s *Service) Update(ctx context.Context, user *models.User, photoID, newDescription string, newHashtags []string) (*models.Photo, error) {
	photoKey := "photo:" + photoID
	s.locks.Lock(photoKey)
	defer s.locks.Unlock(photoKey)

	photo, err := s.photoStore.FindByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load photo '%s': %w", photoID, err)
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}
	if !s.CanModify(user, photo) {
		return nil, ErrForbidden
	}

	before := photo.Clone()
	photo.Description = newDescription
	photo.Hashtags = append([]string(nil), newHashtags...)

	if err := s.photoStore.Save(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to save photo '%s': %w", photoID, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, photoID)
	}
	s.auditLog.Append(user.UserID, "Photo updated: "+photoID)
	return before, nil
}

// Delete 删除图片
// 先尝试删除存储字节，存储失败只记录日志，实体记录仍然移除；
// 这是已知的不一致窗口，不做补偿回滚
func (s *Service) Delete(ctx context.Context, user *models.User, photoID string) error {
	photoKey := "photo:" + photoID
	s.locks.Lock(photoKey)
	defer s.locks.Unlock(photoKey)

	photo, err := s.photoStore.FindByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo '%s': %w", photoID, err)
	}
	if photo == nil {
		return ErrPhotoNotFound
	}
	if !s.CanModify(user, photo) {
		return ErrForbidden
	}

	if err := s.storage.Delete(ctx, photo.StoragePath); err != nil {
		log.Printf("Storage delete failed for '%s' (entity record will still be removed): %v", photo.StoragePath, err)
	} else {
		s.auditLog.Append(storageActor(s.storage.Name()), "Photo bytes deleted at "+photo.StoragePath)
	}
	if photo.ThumbnailPath != "" {
		if err := s.storage.Delete(ctx, photo.ThumbnailPath); err != nil {
			log.Printf("Thumbnail delete failed for '%s': %v", photo.ThumbnailPath, err)
		}
	}

	if err := s.photoStore.Delete(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo '%s': %w", photoID, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, photoID)
	}
	s.auditLog.Append(user.UserID, "Photo deleted: "+photoID)
	return nil
}

// SetThumbnailPath 记录异步生成的缩略图路径
// 图片在生成期间被删除时返回 ErrPhotoNotFound，调用方据此回收缩略图
func (s *Service) SetThumbnailPath(ctx context.Context, photoID, thumbnailPath string) error {
	photoKey := "photo:" + photoID
	s.locks.Lock(photoKey)
	defer s.locks.Unlock(photoKey)

	photo, err := s.photoStore.FindByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo '%s': %w", photoID, err)
	}
	if photo == nil {
		return ErrPhotoNotFound
	}

	photo.ThumbnailPath = thumbnailPath
	if err := s.photoStore.Save(ctx, photo); err != nil {
		return fmt.Errorf("failed to save photo '%s': %w", photoID, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, photoID)
	}
	s.auditLog.Append(audit.ActorSystem, "Thumbnail generated for "+photoID)
	return nil
}

// Storage 返回当前存储提供者
func (s *Service) Storage() storage.Provider {
	return s.storage
}

// formatFromFilename 从扩展名推断格式元数据
func formatFromFilename(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext
}

// storageActor 存储后端在审计日志中的参与者名称
func storageActor(backend string) string {
	switch backend {
	case "local":
		return audit.ActorLocalStorage
	case "minio":
		return audit.ActorCloudStorage
	case "webdav":
		return audit.ActorWebDAVStorage
	default:
		return audit.ActorSystem
	}
}
