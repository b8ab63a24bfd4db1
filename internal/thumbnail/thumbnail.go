package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"

	_ "image/gif"

	"github.com/anoixa/photo-manager/internal/worker"
	"github.com/anoixa/photo-manager/storage"
	"github.com/anoixa/photo-manager/utils/generator"
	"golang.org/x/image/draw"
)

// PathSetter 缩略图生成完成后的元数据回写
type PathSetter interface {
	SetThumbnailPath(ctx context.Context, photoID, thumbnailPath string) error
}

// Service 缩略图生成服务
// 生成是尽力而为的：任何失败只记录日志，不影响已完成的上传
type Service struct {
	storage storage.Provider
	setter  PathSetter
	pool    *worker.WorkerPool
	pathGen *generator.PathGenerator
	width   int
}

// NewService 创建缩略图服务
func NewService(provider storage.Provider, setter PathSetter, pool *worker.WorkerPool, width int) *Service {
	if width <= 0 {
		width = 400
	}
	return &Service{
		storage: provider,
		setter:  setter,
		pool:    pool,
		pathGen: generator.NewPathGenerator(),
		width:   width,
	}
}

// Enqueue 异步生成缩略图，池满时丢弃并记录日志
func (s *Service) Enqueue(photoID, storagePath string) {
	if s.pool == nil {
		s.Generate(context.Background(), photoID, storagePath)
		return
	}
	ok := s.pool.Submit(worker.TaskFunc(func(ctx context.Context) {
		s.Generate(ctx, photoID, storagePath)
	}))
	if !ok {
		log.Printf("Failed to submit thumbnail task for %s", photoID)
	}
}

// Generate 同步生成缩略图并回写路径
func (s *Service) Generate(ctx context.Context, photoID, storagePath string) {
	thumbPath, err := s.generate(ctx, storagePath)
	if err != nil {
		log.Printf("Failed to generate thumbnail for %s: %v", photoID, err)
		return
	}

	if err := s.setter.SetThumbnailPath(ctx, photoID, thumbPath); err != nil {
		log.Printf("Failed to record thumbnail path for %s: %v", photoID, err)
	}
}

func (s *Service) generate(ctx context.Context, storagePath string) (string, error) {
	reader, err := s.storage.Download(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read original: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read original: %w", err)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	scaled := scale(src, s.width)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, scaled)
	default:
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 80})
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	thumbPath := s.pathGen.GenerateThumbnailPath(storagePath, s.width)
	if err := s.storage.UploadTo(ctx, thumbPath, &buf); err != nil {
		return "", fmt.Errorf("failed to store thumbnail: %w", err)
	}
	return thumbPath, nil
}

// scale 等比缩放到目标宽度，原图更窄时原样返回
func scale(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() <= width {
		return src
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
