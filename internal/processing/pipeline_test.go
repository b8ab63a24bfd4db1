package processing

import (
	"testing"

	"github.com/anoixa/photo-manager/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStage_ApplyInIsolation 测试单个阶段可独立调用且只应用一次
func TestStage_ApplyInIsolation(t *testing.T) {
	logger := audit.NewLog()
	img := Image{Data: []byte("raw"), Format: "jpeg"}

	out, err := Resize(300, 200).Apply(img, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"resize:300x200"}, out.Applied)
	assert.Equal(t, 300, out.Width)
	assert.Equal(t, 200, out.Height)

	// 输入值未被修改
	assert.Empty(t, img.Applied)

	// 阶段应用被审计记录
	entries := logger.EntriesForActor(audit.ActorImageProcessor)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Action, "300x200")
}

// TestStage_InvalidResize 测试非法缩放参数
func TestStage_InvalidResize(t *testing.T) {
	_, err := Resize(0, 200).Apply(Image{}, nil)
	assert.Error(t, err)

	_, err = Resize(300, -1).Apply(Image{}, nil)
	assert.Error(t, err)
}

// TestPipeline_EffectOrder 测试效果按选择顺序生效: resize → sepia → blur
func TestPipeline_EffectOrder(t *testing.T) {
	tests := []struct {
		name   string
		stages []Stage
		want   []string
	}{
		{"all three", []Stage{Resize(100, 100), Sepia(), Blur()}, []string{"resize:100x100", "sepia", "blur"}},
		{"resize omitted", []Stage{Sepia(), Blur()}, []string{"sepia", "blur"}},
		{"sepia omitted", []Stage{Resize(50, 50), Blur()}, []string{"resize:50x50", "blur"}},
		{"blur only", []Stage{Blur()}, []string{"blur"}},
		{"reversed", []Stage{Blur(), Sepia(), Resize(10, 20)}, []string{"blur", "sepia", "resize:10x20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(nil, tt.stages...)
			out, err := p.Process(Image{Data: []byte("x")})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Applied)
		})
	}
}

// TestPipeline_Empty 测试空管线为恒等变换
func TestPipeline_Empty(t *testing.T) {
	p := NewPipeline(nil)
	in := Image{Data: []byte("bytes"), Format: "png", Width: 640, Height: 480}
	out, err := p.Process(in)
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
	assert.Empty(t, out.Applied)
}

// TestPipeline_FailureAborts 测试阶段失败时中止且无部分结果
func TestPipeline_FailureAborts(t *testing.T) {
	p := NewPipeline(nil, Sepia(), Resize(0, 0), Blur())
	in := Image{Data: []byte("x")}
	out, err := p.Process(in)
	require.Error(t, err)
	// 返回原始输入，不带已应用的前缀阶段
	assert.Empty(t, out.Applied)
}

// TestParseStages 测试阶段描述解析
func TestParseStages(t *testing.T) {
	stages, err := ParseStages([]string{"resize:300x200", "sepia", "blur"})
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, Resize(300, 200), stages[0])
	assert.Equal(t, Sepia(), stages[1])
	assert.Equal(t, Blur(), stages[2])

	_, err = ParseStages([]string{"resize:300"})
	assert.Error(t, err)

	_, err = ParseStages([]string{"grayscale"})
	assert.Error(t, err)
}
