package processing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anoixa/photo-manager/internal/audit"
)

// Image 流经管线的图片数据与元信息
// Applied 按顺序记录已生效的处理步骤
type Image struct {
	Data    []byte
	Format  string
	Width   int
	Height  int
	Applied []string
}

// StageKind 处理阶段类型
type StageKind string

const (
	StageResize StageKind = "resize"
	StageSepia  StageKind = "sepia"
	StageBlur   StageKind = "blur"
)

// Stage 单个处理阶段
// 像素级变换不在此层实现，阶段只声明并记录自身效果
type Stage struct {
	Kind   StageKind
	Width  int
	Height int
}

// Resize 创建缩放阶段
func Resize(width, height int) Stage {
	return Stage{Kind: StageResize, Width: width, Height: height}
}

// Sepia 创建复古滤镜阶段
func Sepia() Stage {
	return Stage{Kind: StageSepia}
}

// Blur 创建模糊阶段
func Blur() Stage {
	return Stage{Kind: StageBlur}
}

// Apply 对图片应用单个阶段，返回新的图片值
// 阶段可独立调用，每次调用恰好应用一次自身效果
func (s Stage) Apply(img Image, logger *audit.Log) (Image, error) {
	switch s.Kind {
	case StageResize:
		if s.Width <= 0 || s.Height <= 0 {
			return img, fmt.Errorf("invalid resize dimensions %dx%d", s.Width, s.Height)
		}
		img.Width = s.Width
		img.Height = s.Height
		img.Applied = append(img.Applied, fmt.Sprintf("resize:%dx%d", s.Width, s.Height))
		if logger != nil {
			logger.Append(audit.ActorImageProcessor, fmt.Sprintf("Image resized to %dx%d", s.Width, s.Height))
		}
	case StageSepia:
		img.Applied = append(img.Applied, "sepia")
		if logger != nil {
			logger.Append(audit.ActorImageProcessor, "Sepia filter applied")
		}
	case StageBlur:
		img.Applied = append(img.Applied, "blur")
		if logger != nil {
			logger.Append(audit.ActorImageProcessor, "Blur filter applied")
		}
	default:
		return img, fmt.Errorf("unknown processing stage: %s", s.Kind)
	}
	return img, nil
}

// Pipeline 有序处理管线
// 阶段按列表顺序由单个解释器应用：第一个阶段的效果最先生效
type Pipeline struct {
	stages []Stage
	logger *audit.Log
}

// NewPipeline 创建处理管线，零个阶段等价于恒等变换
func NewPipeline(logger *audit.Log, stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: append([]Stage(nil), stages...),
		logger: logger,
	}
}

// Stages 返回阶段列表快照
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Process 按列表顺序应用全部阶段
// 任一阶段失败立即中止并返回错误，不产生部分结果
func (p *Pipeline) Process(img Image) (Image, error) {
	current := img
	for _, stage := range p.stages {
		next, err := stage.Apply(current, p.logger)
		if err != nil {
			return img, fmt.Errorf("processing stage '%s' failed: %w", stage.Kind, err)
		}
		current = next
	}
	return current, nil
}

// ParseStage 解析阶段描述，如 "resize:300x200" / "sepia" / "blur"
func ParseStage(expr string) (Stage, error) {
	name, args, _ := strings.Cut(expr, ":")
	switch StageKind(strings.ToLower(strings.TrimSpace(name))) {
	case StageResize:
		w, h, ok := strings.Cut(args, "x")
		if !ok {
			return Stage{}, fmt.Errorf("invalid resize expression '%s', expected resize:WxH", expr)
		}
		width, err := strconv.Atoi(strings.TrimSpace(w))
		if err != nil {
			return Stage{}, fmt.Errorf("invalid resize width in '%s'", expr)
		}
		height, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil {
			return Stage{}, fmt.Errorf("invalid resize height in '%s'", expr)
		}
		return Resize(width, height), nil
	case StageSepia:
		return Sepia(), nil
	case StageBlur:
		return Blur(), nil
	default:
		return Stage{}, fmt.Errorf("unknown processing stage: %s", name)
	}
}

// ParseStages 解析阶段描述列表，保持调用方给定的顺序
func ParseStages(exprs []string) ([]Stage, error) {
	stages := make([]Stage, 0, len(exprs))
	for _, expr := range exprs {
		stage, err := ParseStage(expr)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}
